// Package github fetches public repository content through the GitHub REST API.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/port"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.github.com"

// reposPerPage is the page size used when listing repositories.
const reposPerPage = 100

// ClientConfig configures a GitHub client.
type ClientConfig struct {
	BaseURL           string
	Token             string // empty for anonymous access
	RequestsPerMinute int
	MaxFileSize       int64 // bytes; 0 disables the cap
}

// Client is a GitHub REST client implementing port.SourceProvider. Every
// request passes through a shared rate limiter.
type Client struct {
	http        *http.Client
	baseURL     string
	token       string
	limiter     *rate.Limiter
	maxFileSize int64
}

// NewClient creates a GitHub client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 60
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		token:       cfg.Token,
		limiter:     rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		maxFileSize: cfg.MaxFileSize,
	}
}

// repoResponse mirrors the fields read from the repositories API.
type repoResponse struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Language      string    `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	UpdatedAt     time.Time `json:"updated_at"`
	Fork          bool      `json:"fork"`
}

// ListRepositories returns every public repository owned by username,
// following pagination until a short page.
func (c *Client) ListRepositories(ctx context.Context, username string) ([]domain.RemoteRepository, error) {
	var repos []domain.RemoteRepository

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&page=%d&sort=updated",
			c.baseURL, url.PathEscape(username), reposPerPage, page)

		var batch []repoResponse
		if err := c.getJSON(ctx, endpoint, &batch); err != nil {
			if IsNotFound(err) {
				return nil, fmt.Errorf("list repositories for %s: %w", username, port.ErrUserNotFound)
			}
			return nil, fmt.Errorf("list repositories for %s: %w", username, err)
		}

		for _, r := range batch {
			repos = append(repos, domain.RemoteRepository{
				Name:          r.Name,
				FullName:      r.FullName,
				Language:      r.Language,
				DefaultBranch: r.DefaultBranch,
				UpdatedAt:     r.UpdatedAt,
				Fork:          r.Fork,
			})
		}

		if len(batch) < reposPerPage {
			return repos, nil
		}
	}
}

// treeResponse mirrors the git trees API.
type treeResponse struct {
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// contentResponse mirrors the repository contents API.
type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchFiles lists one repository's tree and returns its classified files.
// HTML contents are fetched individually; a file whose content cannot be
// fetched is returned with empty content so the analyzer reports it instead
// of the whole repository failing.
func (c *Client) FetchFiles(ctx context.Context, owner, repo, branch string) ([]domain.RepoFile, error) {
	if branch == "" {
		branch = "main"
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))

	var tree treeResponse
	if err := c.getJSON(ctx, endpoint, &tree); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("fetch tree for %s/%s: %w", owner, repo, port.ErrRepoNotFound)
		}
		return nil, fmt.Errorf("fetch tree for %s/%s: %w", owner, repo, err)
	}
	if tree.Truncated {
		slog.Warn("repository tree truncated by the API", "repo", owner+"/"+repo)
	}

	var files []domain.RepoFile
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		file := domain.RepoFile{
			Name: path.Base(entry.Path),
			Path: entry.Path,
			Size: entry.Size,
			Type: domain.ClassifyFile(entry.Path),
		}
		if file.Type == domain.FileTypeHTML {
			content, err := c.fetchContent(ctx, owner, repo, branch, entry.Path, entry.Size)
			if err != nil {
				slog.Warn("skipping file content", "repo", owner+"/"+repo, "path", entry.Path, "error", err)
			} else {
				file.Content = content
			}
		}
		files = append(files, file)
	}
	return files, nil
}

func (c *Client) fetchContent(ctx context.Context, owner, repo, branch, filePath string, size int64) (string, error) {
	if c.maxFileSize > 0 && size > c.maxFileSize {
		return "", port.ErrFileTooLarge
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), escapePath(filePath), url.QueryEscape(branch))

	var content contentResponse
	if err := c.getJSON(ctx, endpoint, &content); err != nil {
		return "", err
	}

	if content.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode content: %w", err)
		}
		return string(decoded), nil
	}
	return content.Content, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return port.ErrRateLimited
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// escapePath escapes each path segment, keeping the separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// apiError is a non-200 GitHub response.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("github api status %d: %s", e.status, e.body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound
}
