package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/markuplens/markuplens/internal/adapter/markup"
	"github.com/markuplens/markuplens/internal/adapter/store"
	"github.com/markuplens/markuplens/internal/analysis"
	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/service"
)

// stubSource serves canned repositories for handler tests.
type stubSource struct {
	repos   []domain.RemoteRepository
	files   map[string][]domain.RepoFile
	listErr error
}

func (s *stubSource) ListRepositories(context.Context, string) ([]domain.RemoteRepository, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.repos, nil
}

func (s *stubSource) FetchFiles(_ context.Context, _, repo, _ string) ([]domain.RepoFile, error) {
	return s.files[repo], nil
}

// newScanApp wires a scan handler over an in-memory store and returns the
// pieces the tests poke at.
func newScanApp(source *stubSource) (*fiber.App, *JobTracker, *store.MemoryStore) {
	history := store.NewMemoryStore()
	analyzer := analysis.NewAnalyzer(markup.NewParser(), analysis.SemanticElements)
	scans := service.NewScanService(source, analyzer, history, service.ScanOptions{Workers: 2})

	tracker := NewJobTracker()
	app := fiber.New()
	NewScanHandler(scans, tracker, history).Register(app)
	return app, tracker, history
}

// waitForJob polls until the job leaves the running state.
func waitForJob(t *testing.T, tracker *JobTracker, jobID string) *JobStatus {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := tracker.GetJob(jobID); ok && job.Status != "running" {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func postScan(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	return resp
}

func TestStartScan(t *testing.T) {
	source := &stubSource{
		repos: []domain.RemoteRepository{{Name: "site", DefaultBranch: "main"}},
		files: map[string][]domain.RepoFile{
			"site": {{
				Name:    "index.html",
				Path:    "index.html",
				Content: "<!DOCTYPE html><html lang=\"en\"><head><title>t</title></head><body><main></main></body></html>",
				Type:    domain.FileTypeHTML,
			}},
		},
	}
	app, tracker, history := newScanApp(source)

	resp := postScan(t, app, `{"username":"octocat"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	var accepted struct {
		JobID    string `json:"job_id"`
		Username string `json:"username"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if accepted.JobID == "" {
		t.Fatal("no job_id returned")
	}
	if accepted.Message != "scan started" {
		t.Errorf("message = %q", accepted.Message)
	}

	job := waitForJob(t, tracker, accepted.JobID)
	if job.Status != "complete" {
		t.Fatalf("job status = %q (%s), want complete", job.Status, job.Error)
	}
	if job.SessionID == "" {
		t.Error("completed job should carry the session ID")
	}

	snapshots, err := history.RecentSessions(context.Background(), "octocat", 1)
	if err != nil || len(snapshots) != 1 {
		t.Fatalf("RecentSessions() = %d snapshots, err %v; want 1 session", len(snapshots), err)
	}
	if snapshots[0].Session.ID != job.SessionID {
		t.Errorf("session ID = %q, want the job's %q", snapshots[0].Session.ID, job.SessionID)
	}

	t.Run("audit trail", func(t *testing.T) {
		starts, err := history.ListAuditLogs(context.Background(), 10, domain.AuditActionScanStart)
		if err != nil || len(starts) != 1 {
			t.Fatalf("scan_start logs = %d, err %v; want 1", len(starts), err)
		}
		completes, err := history.ListAuditLogs(context.Background(), 10, domain.AuditActionScanComplete)
		if err != nil || len(completes) != 1 {
			t.Fatalf("scan_complete logs = %d, err %v; want 1", len(completes), err)
		}
		if !strings.Contains(completes[0].Details, "octocat") {
			t.Errorf("completion details = %q, want the username recorded", completes[0].Details)
		}
	})
}

func TestStartScanValidation(t *testing.T) {
	app, _, _ := newScanApp(&stubSource{})

	t.Run("blank username", func(t *testing.T) {
		resp := postScan(t, app, `{"username":"   "}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := postScan(t, app, `{"username":`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})
}

func TestStartScanFailureMarksJob(t *testing.T) {
	source := &stubSource{listErr: context.DeadlineExceeded}
	app, tracker, _ := newScanApp(source)

	resp := postScan(t, app, `{"username":"octocat"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	job := waitForJob(t, tracker, accepted.JobID)
	if job.Status != "error" {
		t.Errorf("job status = %q, want error", job.Status)
	}
	if !strings.Contains(job.Error, "list repositories") {
		t.Errorf("job error = %q, want listing context", job.Error)
	}
}
