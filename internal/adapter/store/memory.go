package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/markuplens/markuplens/internal/domain"
)

// MemoryStore keeps analysis history in process memory. It backs local
// development and tests when no DATABASE_URL is configured; history is lost
// on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []domain.AnalysisSession
	analyses map[string][]domain.RepositoryAnalysis // session ID -> analyses
	records  map[string][]domain.FileRecord         // repo analysis ID -> records
	audits   []domain.AuditLog
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		analyses: make(map[string][]domain.RepositoryAnalysis),
		records:  make(map[string][]domain.FileRecord),
	}
}

// AppendSession stores a new session, assigning its ID and CreatedAt. A
// caller-provided CreatedAt is kept, which lets tests build histories.
func (s *MemoryStore) AppendSession(_ context.Context, session *domain.AnalysisSession) (*domain.AnalysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.sessions = append(s.sessions, stored)
	return &stored, nil
}

// AppendRepositoryAnalysis stores one repository analysis under its session.
func (s *MemoryStore) AppendRepositoryAnalysis(_ context.Context, analysis *domain.RepositoryAnalysis) (*domain.RepositoryAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *analysis
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.analyses[stored.SessionID] = append(s.analyses[stored.SessionID], stored)
	return &stored, nil
}

// AppendFileRecord stores one file record, filling in its ID and CreatedAt.
func (s *MemoryStore) AppendFileRecord(_ context.Context, record *domain.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.records[record.RepoAnalysisID] = append(s.records[record.RepoAnalysisID], *record)
	return nil
}

// RecentSessions returns up to limit sessions for a username, newest first,
// with nested repository analyses and file records.
func (s *MemoryStore) RecentSessions(_ context.Context, username string, limit int) ([]domain.SessionSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.AnalysisSession
	for _, sess := range s.sessions {
		if sess.Username == username {
			matched = append(matched, sess)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	var snapshots []domain.SessionSnapshot
	for _, sess := range matched {
		snapshot := domain.SessionSnapshot{Session: sess}
		for _, a := range s.analyses[sess.ID] {
			repo := domain.RepositorySnapshot{Analysis: a}
			repo.Files = append(repo.Files, s.records[a.ID]...)
			snapshot.Repositories = append(snapshot.Repositories, repo)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// WriteAudit implements middleware.AuditWriter.
func (s *MemoryStore) WriteAudit(action, resource, resourceID, details, ip, userAgent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audits = append(s.audits, domain.AuditLog{
		ID:         uuid.NewString(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		IP:         ip,
		UserAgent:  userAgent,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// ListAuditLogs returns recent audit logs with an optional action filter.
func (s *MemoryStore) ListAuditLogs(_ context.Context, limit int, action string) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var logs []domain.AuditLog
	for i := len(s.audits) - 1; i >= 0; i-- {
		if action != "" && s.audits[i].Action != action {
			continue
		}
		logs = append(logs, s.audits[i])
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}
