package store

import (
	"context"
	"testing"
	"time"

	"github.com/markuplens/markuplens/internal/domain"
)

// seedSession writes one complete session with a single repository and file.
func seedSession(t *testing.T, s *MemoryStore, username string, createdAt time.Time) *domain.AnalysisSession {
	t.Helper()
	ctx := context.Background()

	session, err := s.AppendSession(ctx, &domain.AnalysisSession{
		Username:          username,
		TotalRepositories: 1,
		TotalHTMLFiles:    1,
		CreatedAt:         createdAt,
	})
	if err != nil {
		t.Fatalf("AppendSession() error = %v", err)
	}

	analysis, err := s.AppendRepositoryAnalysis(ctx, &domain.RepositoryAnalysis{
		SessionID:      session.ID,
		RepositoryName: "site",
		Language:       "HTML",
		IsStatic:       true,
		HTMLFilesCount: 1,
	})
	if err != nil {
		t.Fatalf("AppendRepositoryAnalysis() error = %v", err)
	}

	record := domain.FileRecord{
		RepoAnalysisID: analysis.ID,
		FileName:       "index.html",
		FilePath:       "index.html",
		SemanticRatio:  25,
	}
	if err := s.AppendFileRecord(ctx, &record); err != nil {
		t.Fatalf("AppendFileRecord() error = %v", err)
	}
	if record.ID == "" {
		t.Fatal("AppendFileRecord() should assign an ID")
	}
	return session
}

func TestMemoryStoreAssignsIdentity(t *testing.T) {
	s := NewMemoryStore()

	session, err := s.AppendSession(context.Background(), &domain.AnalysisSession{Username: "octocat"})
	if err != nil {
		t.Fatalf("AppendSession() error = %v", err)
	}
	if session.ID == "" {
		t.Error("session ID should be assigned")
	}
	if session.CreatedAt.IsZero() {
		t.Error("session CreatedAt should default to now")
	}
}

func TestMemoryStoreKeepsBackdatedTimestamps(t *testing.T) {
	s := NewMemoryStore()
	past := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	session, err := s.AppendSession(context.Background(), &domain.AnalysisSession{
		Username:  "octocat",
		CreatedAt: past,
	})
	if err != nil {
		t.Fatalf("AppendSession() error = %v", err)
	}
	if !session.CreatedAt.Equal(past) {
		t.Errorf("CreatedAt = %v, want the provided %v", session.CreatedAt, past)
	}
}

func TestMemoryStoreRecentSessions(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedSession(t, s, "octocat", base)
	seedSession(t, s, "octocat", base.Add(2*time.Hour))
	middle := seedSession(t, s, "octocat", base.Add(time.Hour))
	seedSession(t, s, "someone-else", base.Add(3*time.Hour))

	t.Run("newest first, filtered by username", func(t *testing.T) {
		snapshots, err := s.RecentSessions(context.Background(), "octocat", 10)
		if err != nil {
			t.Fatalf("RecentSessions() error = %v", err)
		}
		if len(snapshots) != 3 {
			t.Fatalf("got %d snapshots, want 3", len(snapshots))
		}
		for i := 1; i < len(snapshots); i++ {
			if snapshots[i].Session.CreatedAt.After(snapshots[i-1].Session.CreatedAt) {
				t.Errorf("snapshots out of order at %d", i)
			}
		}
		if snapshots[1].Session.ID != middle.ID {
			t.Errorf("middle session = %q, want %q", snapshots[1].Session.ID, middle.ID)
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		snapshots, err := s.RecentSessions(context.Background(), "octocat", 2)
		if err != nil {
			t.Fatalf("RecentSessions() error = %v", err)
		}
		if len(snapshots) != 2 {
			t.Errorf("got %d snapshots, want 2", len(snapshots))
		}
	})

	t.Run("nested records attached", func(t *testing.T) {
		snapshots, err := s.RecentSessions(context.Background(), "octocat", 1)
		if err != nil {
			t.Fatalf("RecentSessions() error = %v", err)
		}
		if len(snapshots) != 1 {
			t.Fatalf("got %d snapshots, want 1", len(snapshots))
		}
		repos := snapshots[0].Repositories
		if len(repos) != 1 {
			t.Fatalf("got %d repositories, want 1", len(repos))
		}
		if repos[0].Analysis.RepositoryName != "site" {
			t.Errorf("repository name = %q", repos[0].Analysis.RepositoryName)
		}
		files := repos[0].Files
		if len(files) != 1 || files[0].FilePath != "index.html" {
			t.Errorf("files = %+v, want the seeded index.html", files)
		}
	})

	t.Run("unknown user yields nothing", func(t *testing.T) {
		snapshots, err := s.RecentSessions(context.Background(), "nobody", 10)
		if err != nil {
			t.Fatalf("RecentSessions() error = %v", err)
		}
		if len(snapshots) != 0 {
			t.Errorf("got %d snapshots, want 0", len(snapshots))
		}
	})
}

func TestMemoryStoreAuditLogs(t *testing.T) {
	s := NewMemoryStore()

	for _, action := range []string{"scan_start", "http_request", "scan_complete", "http_request"} {
		if err := s.WriteAudit(action, "scan", "id-1", "{}", "127.0.0.1", "test-agent"); err != nil {
			t.Fatalf("WriteAudit() error = %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		logs, err := s.ListAuditLogs(context.Background(), 10, "")
		if err != nil {
			t.Fatalf("ListAuditLogs() error = %v", err)
		}
		if len(logs) != 4 {
			t.Fatalf("got %d logs, want 4", len(logs))
		}
		if logs[0].Action != "http_request" || logs[3].Action != "scan_start" {
			t.Errorf("order wrong: first %q, last %q", logs[0].Action, logs[3].Action)
		}
	})

	t.Run("action filter", func(t *testing.T) {
		logs, err := s.ListAuditLogs(context.Background(), 10, "http_request")
		if err != nil {
			t.Fatalf("ListAuditLogs() error = %v", err)
		}
		if len(logs) != 2 {
			t.Errorf("got %d logs, want 2", len(logs))
		}
		for _, l := range logs {
			if l.Action != "http_request" {
				t.Errorf("action = %q, want http_request", l.Action)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		logs, err := s.ListAuditLogs(context.Background(), 1, "")
		if err != nil {
			t.Fatalf("ListAuditLogs() error = %v", err)
		}
		if len(logs) != 1 {
			t.Errorf("got %d logs, want 1", len(logs))
		}
	})
}
