package port

import (
	"context"

	"github.com/markuplens/markuplens/internal/domain"
)

// SourceProvider abstracts the repository hosting service. Implementations
// list a user's public repositories and fetch classified file contents.
type SourceProvider interface {
	// ListRepositories returns the public repositories owned by username.
	ListRepositories(ctx context.Context, username string) ([]domain.RemoteRepository, error)

	// FetchFiles returns the classified files of one repository. Content is
	// populated for HTML files only; a file whose content cannot be fetched
	// is returned with empty content rather than failing the repository.
	FetchFiles(ctx context.Context, owner, repo, branch string) ([]domain.RepoFile, error)
}
