package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/markuplens/markuplens/internal/analysis"
	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/port"
)

// ProgressFunc receives scan progress: the repository just finished and the
// done/total counts.
type ProgressFunc func(repository string, done, total int)

// ScanOptions bound the work one scan may do.
type ScanOptions struct {
	Workers  int // concurrent repository fetches
	MaxRepos int // most recently updated repositories kept; 0 means all
}

// ScanService runs a full portfolio scan: list repositories, fetch and
// analyze their HTML files, then persist one append-only session.
type ScanService struct {
	source   port.SourceProvider
	analyzer *analysis.Analyzer
	store    port.Store
	workers  int
	maxRepos int
}

// NewScanService creates a scan service.
func NewScanService(source port.SourceProvider, analyzer *analysis.Analyzer, store port.Store, opts ScanOptions) *ScanService {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &ScanService{
		source:   source,
		analyzer: analyzer,
		store:    store,
		workers:  workers,
		maxRepos: opts.MaxRepos,
	}
}

// repoResult is one repository's analyzed HTML files, accumulated in memory
// before anything is persisted.
type repoResult struct {
	repo  domain.RemoteRepository
	files []domain.FileAnalysis
}

// ScanUser analyzes every owned repository of username and appends the result
// as a new session. Per-repository failures are logged and skipped; the scan
// itself fails only when listing repositories or persisting fails.
func (s *ScanService) ScanUser(ctx context.Context, username string, progress ProgressFunc) (*domain.AnalysisSession, error) {
	slog.Info("starting scan", "username", username)

	repos, err := s.source.ListRepositories(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	// Forks are someone else's markup; only repositories the user owns count
	// toward their portfolio.
	owned := make([]domain.RemoteRepository, 0, len(repos))
	for _, r := range repos {
		if !r.Fork {
			owned = append(owned, r)
		}
	}
	if s.maxRepos > 0 && len(owned) > s.maxRepos {
		owned = owned[:s.maxRepos]
	}

	results := s.analyzeAll(ctx, username, owned, progress)

	totalHTML := 0
	for _, r := range results {
		totalHTML += len(r.files)
	}

	session, err := s.store.AppendSession(ctx, &domain.AnalysisSession{
		Username:          username,
		TotalRepositories: len(results),
		TotalHTMLFiles:    totalHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("append session: %w", err)
	}

	for _, r := range results {
		ra, err := s.store.AppendRepositoryAnalysis(ctx, &domain.RepositoryAnalysis{
			SessionID:      session.ID,
			RepositoryName: r.repo.Name,
			Language:       r.repo.Language,
			LastUpdated:    r.repo.UpdatedAt,
			IsStatic:       len(r.files) > 0,
			HTMLFilesCount: len(r.files),
		})
		if err != nil {
			return nil, fmt.Errorf("append repository analysis: %w", err)
		}
		for _, fa := range r.files {
			record := domain.NewFileRecord(ra.ID, fa)
			if err := s.store.AppendFileRecord(ctx, &record); err != nil {
				return nil, fmt.Errorf("append file record: %w", err)
			}
		}
	}

	slog.Info("scan complete",
		"username", username,
		"session_id", session.ID,
		"repositories", session.TotalRepositories,
		"html_files", session.TotalHTMLFiles,
	)
	return session, nil
}

// analyzeAll fetches and analyzes repositories with a bounded worker pool.
// Results keep the listing order regardless of completion order.
func (s *ScanService) analyzeAll(ctx context.Context, username string, repos []domain.RemoteRepository, progress ProgressFunc) []repoResult {
	results := make([]repoResult, len(repos))
	sem := make(chan struct{}, s.workers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i := range repos {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = s.analyzeRepository(ctx, username, repos[i])

			mu.Lock()
			done++
			finished := done
			mu.Unlock()
			if progress != nil {
				progress(repos[i].Name, finished, len(repos))
			}
		}(i)
	}
	wg.Wait()

	return results
}

// analyzeRepository fetches one repository's files and analyzes the HTML
// ones. A failed fetch yields an empty result rather than failing the scan.
func (s *ScanService) analyzeRepository(ctx context.Context, username string, repo domain.RemoteRepository) repoResult {
	result := repoResult{repo: repo}

	files, err := s.source.FetchFiles(ctx, username, repo.Name, repo.DefaultBranch)
	if err != nil {
		slog.Warn("skipping repository", "repo", repo.FullName, "error", err)
		return result
	}

	for _, f := range files {
		if f.Type != domain.FileTypeHTML {
			continue
		}
		result.files = append(result.files, s.analyzer.AnalyzeFile(f))
	}
	return result
}
