package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/port"
)

// testClient points a client at the test server with a limiter generous
// enough to never block.
func testClient(server *httptest.Server, cfg ClientConfig) *Client {
	cfg.BaseURL = server.URL
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 60000
	}
	return NewClient(cfg)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestListRepositoriesPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		var batch []repoResponse
		switch page {
		case "1":
			for i := 0; i < 100; i++ {
				batch = append(batch, repoResponse{Name: fmt.Sprintf("repo-%d", i), DefaultBranch: "main"})
			}
		case "2":
			batch = []repoResponse{
				{Name: "tail-repo", FullName: "octocat/tail-repo", Language: "HTML", Fork: true},
			}
		default:
			t.Errorf("unexpected page %q requested", page)
		}
		writeJSON(t, w, batch)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server, ClientConfig{})
	repos, err := client.ListRepositories(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("ListRepositories() error = %v", err)
	}

	if len(repos) != 101 {
		t.Fatalf("got %d repositories, want 101", len(repos))
	}
	last := repos[100]
	if last.Name != "tail-repo" || last.FullName != "octocat/tail-repo" {
		t.Errorf("last repo = %+v", last)
	}
	if last.Language != "HTML" || !last.Fork {
		t.Errorf("repo fields not carried over: %+v", last)
	}
}

func TestListRepositoriesUserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server, ClientConfig{})
	_, err := client.ListRepositories(context.Background(), "ghost")
	if !errors.Is(err, port.ErrUserNotFound) {
		t.Errorf("error = %v, want wrapped %v", err, port.ErrUserNotFound)
	}
}

func TestListRepositoriesSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != "2022-11-28" {
			t.Errorf("X-GitHub-Api-Version = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(t, w, []repoResponse{})
	}))
	defer server.Close()

	client := testClient(server, ClientConfig{Token: "secret-token"})
	if _, err := client.ListRepositories(context.Background(), "octocat"); err != nil {
		t.Fatalf("ListRepositories() error = %v", err)
	}
}

func TestFetchFiles(t *testing.T) {
	page := "<!DOCTYPE html><html><body><main>hi</main></body></html>"
	encoded := base64.StdEncoding.EncodeToString([]byte(page))
	// GitHub chunks base64 content with newlines.
	chunked := encoded[:16] + "\n" + encoded[16:] + "\n"

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/site/git/trees/gh-pages", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("recursive"); got != "1" {
			t.Errorf("recursive = %q, want 1", got)
		}
		writeJSON(t, w, treeResponse{Tree: []treeEntry{
			{Path: "index.html", Type: "blob", Size: int64(len(page))},
			{Path: "assets/app.css", Type: "blob", Size: 64},
			{Path: "assets/app.js", Type: "blob", Size: 64},
			{Path: "docs", Type: "tree"},
			{Path: "README.md", Type: "blob", Size: 10},
		}})
	})
	mux.HandleFunc("/repos/octocat/site/contents/index.html", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ref"); got != "gh-pages" {
			t.Errorf("ref = %q, want gh-pages", got)
		}
		writeJSON(t, w, contentResponse{Content: chunked, Encoding: "base64"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server, ClientConfig{})
	files, err := client.FetchFiles(context.Background(), "octocat", "site", "gh-pages")
	if err != nil {
		t.Fatalf("FetchFiles() error = %v", err)
	}

	if len(files) != 4 {
		t.Fatalf("got %d files, want 4 (tree entries are not files)", len(files))
	}

	byPath := make(map[string]domain.RepoFile)
	for _, f := range files {
		byPath[f.Path] = f
	}

	index := byPath["index.html"]
	if index.Type != domain.FileTypeHTML {
		t.Errorf("index.html type = %q, want %q", index.Type, domain.FileTypeHTML)
	}
	if index.Content != page {
		t.Errorf("index.html content = %q, want decoded page", index.Content)
	}
	if index.Name != "index.html" {
		t.Errorf("index.html name = %q", index.Name)
	}

	css := byPath["assets/app.css"]
	if css.Type != domain.FileTypeCSS {
		t.Errorf("app.css type = %q, want %q", css.Type, domain.FileTypeCSS)
	}
	if css.Content != "" {
		t.Error("non-HTML files must not have content fetched")
	}
	if css.Name != "app.css" {
		t.Errorf("app.css name = %q, want base name", css.Name)
	}

	if byPath["README.md"].Type != domain.FileTypeOther {
		t.Errorf("README.md type = %q, want %q", byPath["README.md"].Type, domain.FileTypeOther)
	}
}

func TestFetchFilesDefaultsBranchToMain(t *testing.T) {
	requested := false
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/site/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		requested = true
		writeJSON(t, w, treeResponse{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server, ClientConfig{})
	if _, err := client.FetchFiles(context.Background(), "octocat", "site", ""); err != nil {
		t.Fatalf("FetchFiles() error = %v", err)
	}
	if !requested {
		t.Error("empty branch should fall back to main")
	}
}

func TestFetchFilesSizeCap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/site/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, treeResponse{Tree: []treeEntry{
			{Path: "huge.html", Type: "blob", Size: 5000},
		}})
	})
	mux.HandleFunc("/repos/octocat/site/contents/huge.html", func(w http.ResponseWriter, r *http.Request) {
		t.Error("content must not be requested for files over the cap")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(server, ClientConfig{MaxFileSize: 1000})
	files, err := client.FetchFiles(context.Background(), "octocat", "site", "main")
	if err != nil {
		t.Fatalf("FetchFiles() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	// The file survives with empty content so the analyzer can report it.
	if files[0].Content != "" {
		t.Errorf("content = %q, want empty for oversized file", files[0].Content)
	}
}

func TestFetchFilesRepoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server, ClientConfig{})
	_, err := client.FetchFiles(context.Background(), "octocat", "gone", "main")
	if !errors.Is(err, port.ErrRepoNotFound) {
		t.Errorf("error = %v, want wrapped %v", err, port.ErrRepoNotFound)
	}
}

func TestRateLimitDetection(t *testing.T) {
	t.Run("exhausted quota", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := testClient(server, ClientConfig{})
		_, err := client.ListRepositories(context.Background(), "octocat")
		if !errors.Is(err, port.ErrRateLimited) {
			t.Errorf("error = %v, want wrapped %v", err, port.ErrRateLimited)
		}
	})

	t.Run("plain forbidden is not a rate limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "42")
			http.Error(w, `{"message":"Forbidden"}`, http.StatusForbidden)
		}))
		defer server.Close()

		client := testClient(server, ClientConfig{})
		_, err := client.ListRepositories(context.Background(), "octocat")
		if err == nil {
			t.Fatal("expected an error")
		}
		if errors.Is(err, port.ErrRateLimited) {
			t.Errorf("error = %v, must not read as rate limited", err)
		}
	})
}

func TestEscapePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"index.html", "index.html"},
		{"docs/guide.html", "docs/guide.html"},
		{"my docs/page one.html", "my%20docs/page%20one.html"},
	}

	for _, tt := range tests {
		if got := escapePath(tt.in); got != tt.want {
			t.Errorf("escapePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
