package port

import (
	"context"

	"github.com/markuplens/markuplens/internal/domain"
)

// Store is the append-only persistence port for analysis history.
type Store interface {
	// AppendSession persists a new session and returns it with ID and
	// CreatedAt populated.
	AppendSession(ctx context.Context, session *domain.AnalysisSession) (*domain.AnalysisSession, error)

	// AppendRepositoryAnalysis persists one repository analysis under a
	// session and returns it with ID and CreatedAt populated.
	AppendRepositoryAnalysis(ctx context.Context, analysis *domain.RepositoryAnalysis) (*domain.RepositoryAnalysis, error)

	// AppendFileRecord persists one flattened file record under a repository
	// analysis, filling in its ID and CreatedAt.
	AppendFileRecord(ctx context.Context, record *domain.FileRecord) error

	// RecentSessions returns up to limit sessions for username, newest first,
	// with nested repository analyses and file records.
	RecentSessions(ctx context.Context, username string, limit int) ([]domain.SessionSnapshot, error)
}
