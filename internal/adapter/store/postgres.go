package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/markuplens/markuplens/internal/domain"
)

// PostgresStore persists analysis history in PostgreSQL. All writes are
// inserts; sessions are never updated or deleted.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, verifies it and creates the schema if
// it does not exist yet.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) ensureSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analysis_sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username TEXT NOT NULL,
			total_repositories INTEGER NOT NULL DEFAULT 0,
			total_html_files INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_sessions_username
			ON analysis_sessions (username, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS repository_analyses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES analysis_sessions(id) ON DELETE CASCADE,
			repository_name TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_static BOOLEAN NOT NULL DEFAULT FALSE,
			html_files_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS file_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			repo_analysis_id UUID NOT NULL REFERENCES repository_analyses(id) ON DELETE CASCADE,
			file_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			has_doctype BOOLEAN NOT NULL DEFAULT FALSE,
			has_lang_attribute BOOLEAN NOT NULL DEFAULT FALSE,
			has_meta_charset BOOLEAN NOT NULL DEFAULT FALSE,
			has_meta_viewport BOOLEAN NOT NULL DEFAULT FALSE,
			has_meta_description BOOLEAN NOT NULL DEFAULT FALSE,
			has_title BOOLEAN NOT NULL DEFAULT FALSE,
			semantic_elements_used TEXT[] NOT NULL DEFAULT '{}',
			semantic_elements_count INTEGER NOT NULL DEFAULT 0,
			uses_main BOOLEAN NOT NULL DEFAULT FALSE,
			uses_nav BOOLEAN NOT NULL DEFAULT FALSE,
			uses_header BOOLEAN NOT NULL DEFAULT FALSE,
			uses_footer BOOLEAN NOT NULL DEFAULT FALSE,
			uses_section BOOLEAN NOT NULL DEFAULT FALSE,
			uses_article BOOLEAN NOT NULL DEFAULT FALSE,
			total_images INTEGER NOT NULL DEFAULT 0,
			images_without_alt INTEGER NOT NULL DEFAULT 0,
			alt_tag_coverage DOUBLE PRECISION NOT NULL DEFAULT 0,
			heading_levels INTEGER[] NOT NULL DEFAULT '{}',
			total_headings INTEGER NOT NULL DEFAULT 0,
			has_proper_heading_hierarchy BOOLEAN NOT NULL DEFAULT FALSE,
			total_elements INTEGER NOT NULL DEFAULT 0,
			div_elements INTEGER NOT NULL DEFAULT 0,
			semantic_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
			issues_count INTEGER NOT NULL DEFAULT 0,
			critical_issues INTEGER NOT NULL DEFAULT 0,
			warning_issues INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			action TEXT NOT NULL,
			resource TEXT NOT NULL DEFAULT '',
			resource_id TEXT NOT NULL DEFAULT '',
			details JSONB NOT NULL DEFAULT '{}'::jsonb,
			ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("execute %q: %w", query[:40], err)
		}
	}
	return nil
}

// --- Sessions ---

// AppendSession inserts a new analysis session.
func (s *PostgresStore) AppendSession(ctx context.Context, session *domain.AnalysisSession) (*domain.AnalysisSession, error) {
	query := `INSERT INTO analysis_sessions (username, total_repositories, total_html_files)
	          VALUES ($1, $2, $3)
	          RETURNING id, username, total_repositories, total_html_files, created_at`

	var result domain.AnalysisSession
	err := s.db.QueryRowContext(ctx, query,
		session.Username, session.TotalRepositories, session.TotalHTMLFiles,
	).Scan(
		&result.ID, &result.Username, &result.TotalRepositories,
		&result.TotalHTMLFiles, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append session: %w", err)
	}
	return &result, nil
}

// AppendRepositoryAnalysis inserts one repository analysis under a session.
func (s *PostgresStore) AppendRepositoryAnalysis(ctx context.Context, analysis *domain.RepositoryAnalysis) (*domain.RepositoryAnalysis, error) {
	query := `INSERT INTO repository_analyses (session_id, repository_name, language, last_updated, is_static, html_files_count)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, session_id, repository_name, language, last_updated, is_static, html_files_count, created_at`

	var result domain.RepositoryAnalysis
	err := s.db.QueryRowContext(ctx, query,
		analysis.SessionID, analysis.RepositoryName, analysis.Language,
		analysis.LastUpdated, analysis.IsStatic, analysis.HTMLFilesCount,
	).Scan(
		&result.ID, &result.SessionID, &result.RepositoryName, &result.Language,
		&result.LastUpdated, &result.IsStatic, &result.HTMLFilesCount, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append repository analysis: %w", err)
	}
	return &result, nil
}

// AppendFileRecord inserts one flattened file record, filling in its ID and
// CreatedAt.
func (s *PostgresStore) AppendFileRecord(ctx context.Context, record *domain.FileRecord) error {
	query := `INSERT INTO file_records (
			repo_analysis_id, file_name, file_path, file_size,
			has_doctype, has_lang_attribute, has_meta_charset, has_meta_viewport, has_meta_description, has_title,
			semantic_elements_used, semantic_elements_count,
			uses_main, uses_nav, uses_header, uses_footer, uses_section, uses_article,
			total_images, images_without_alt, alt_tag_coverage,
			heading_levels, total_headings, has_proper_heading_hierarchy,
			total_elements, div_elements, semantic_ratio,
			issues_count, critical_issues, warning_issues
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		record.RepoAnalysisID, record.FileName, record.FilePath, record.FileSize,
		record.HasDoctype, record.HasLangAttribute, record.HasMetaCharset,
		record.HasMetaViewport, record.HasMetaDescription, record.HasTitle,
		pq.Array(record.SemanticElementsUsed), record.SemanticElementsCount,
		record.UsesMain, record.UsesNav, record.UsesHeader,
		record.UsesFooter, record.UsesSection, record.UsesArticle,
		record.TotalImages, record.ImagesWithoutAlt, record.AltTagCoverage,
		pq.Array(record.HeadingLevels), record.TotalHeadings, record.HasProperHeadingHierarchy,
		record.TotalElements, record.DivElements, record.SemanticRatio,
		record.IssuesCount, record.CriticalIssues, record.WarningIssues,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("append file record: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions for a username, newest first,
// with their repository analyses and file records attached.
func (s *PostgresStore) RecentSessions(ctx context.Context, username string, limit int) ([]domain.SessionSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}

	sessions, err := s.sessionsByUsername(ctx, username, limit)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	snapshots := make([]domain.SessionSnapshot, len(sessions))
	sessionIndex := make(map[string]int, len(sessions))
	sessionIDs := make([]string, len(sessions))
	for i, sess := range sessions {
		snapshots[i] = domain.SessionSnapshot{Session: sess}
		sessionIndex[sess.ID] = i
		sessionIDs[i] = sess.ID
	}

	analyses, err := s.analysesBySession(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	// repoIndex maps a repository analysis ID to its position in the
	// snapshot slice so file records can be attached in one pass.
	type position struct{ session, repo int }
	repoIndex := make(map[string]position, len(analyses))
	repoIDs := make([]string, 0, len(analyses))
	for _, a := range analyses {
		i, ok := sessionIndex[a.SessionID]
		if !ok {
			continue
		}
		snapshots[i].Repositories = append(snapshots[i].Repositories, domain.RepositorySnapshot{Analysis: a})
		repoIndex[a.ID] = position{session: i, repo: len(snapshots[i].Repositories) - 1}
		repoIDs = append(repoIDs, a.ID)
	}

	if len(repoIDs) > 0 {
		records, err := s.recordsByAnalysis(ctx, repoIDs)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			pos, ok := repoIndex[rec.RepoAnalysisID]
			if !ok {
				continue
			}
			repo := &snapshots[pos.session].Repositories[pos.repo]
			repo.Files = append(repo.Files, rec)
		}
	}

	return snapshots, nil
}

func (s *PostgresStore) sessionsByUsername(ctx context.Context, username string, limit int) ([]domain.AnalysisSession, error) {
	query := `SELECT id, username, total_repositories, total_html_files, created_at
	          FROM analysis_sessions WHERE username = $1
	          ORDER BY created_at DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.AnalysisSession
	for rows.Next() {
		var sess domain.AnalysisSession
		if err := rows.Scan(
			&sess.ID, &sess.Username, &sess.TotalRepositories,
			&sess.TotalHTMLFiles, &sess.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *PostgresStore) analysesBySession(ctx context.Context, sessionIDs []string) ([]domain.RepositoryAnalysis, error) {
	query := `SELECT id, session_id, repository_name, language, last_updated, is_static, html_files_count, created_at
	          FROM repository_analyses WHERE session_id = ANY($1::uuid[])
	          ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(sessionIDs))
	if err != nil {
		return nil, fmt.Errorf("list repository analyses: %w", err)
	}
	defer rows.Close()

	var analyses []domain.RepositoryAnalysis
	for rows.Next() {
		var a domain.RepositoryAnalysis
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.RepositoryName, &a.Language,
			&a.LastUpdated, &a.IsStatic, &a.HTMLFilesCount, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan repository analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}

func (s *PostgresStore) recordsByAnalysis(ctx context.Context, repoIDs []string) ([]domain.FileRecord, error) {
	query := `SELECT id, repo_analysis_id, file_name, file_path, file_size,
			has_doctype, has_lang_attribute, has_meta_charset, has_meta_viewport, has_meta_description, has_title,
			semantic_elements_used, semantic_elements_count,
			uses_main, uses_nav, uses_header, uses_footer, uses_section, uses_article,
			total_images, images_without_alt, alt_tag_coverage,
			heading_levels, total_headings, has_proper_heading_hierarchy,
			total_elements, div_elements, semantic_ratio,
			issues_count, critical_issues, warning_issues, created_at
	          FROM file_records WHERE repo_analysis_id = ANY($1::uuid[])
	          ORDER BY file_path ASC`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(repoIDs))
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	defer rows.Close()

	var records []domain.FileRecord
	for rows.Next() {
		var rec domain.FileRecord
		var levels pq.Int64Array
		if err := rows.Scan(
			&rec.ID, &rec.RepoAnalysisID, &rec.FileName, &rec.FilePath, &rec.FileSize,
			&rec.HasDoctype, &rec.HasLangAttribute, &rec.HasMetaCharset,
			&rec.HasMetaViewport, &rec.HasMetaDescription, &rec.HasTitle,
			pq.Array(&rec.SemanticElementsUsed), &rec.SemanticElementsCount,
			&rec.UsesMain, &rec.UsesNav, &rec.UsesHeader,
			&rec.UsesFooter, &rec.UsesSection, &rec.UsesArticle,
			&rec.TotalImages, &rec.ImagesWithoutAlt, &rec.AltTagCoverage,
			&levels, &rec.TotalHeadings, &rec.HasProperHeadingHierarchy,
			&rec.TotalElements, &rec.DivElements, &rec.SemanticRatio,
			&rec.IssuesCount, &rec.CriticalIssues, &rec.WarningIssues, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		if len(levels) > 0 {
			rec.HeadingLevels = make([]int, len(levels))
			for i, l := range levels {
				rec.HeadingLevels[i] = int(l)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(action, resource, resourceID, details, ip, userAgent string) error {
	if details == "" {
		details = "{}"
	}
	query := `INSERT INTO audit_logs (action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4::jsonb, $5, $6)`
	_, err := s.db.ExecContext(context.Background(), query,
		action, resource, resourceID, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with an optional action filter.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, action, resource, resource_id, details, ip, user_agent, created_at
	          FROM audit_logs`
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}
