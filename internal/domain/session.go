package domain

import "time"

// AnalysisSession is one full portfolio scan for a username. Sessions are
// append-only; history is never rewritten.
type AnalysisSession struct {
	ID                string    `json:"id"                 db:"id"`
	Username          string    `json:"username"           db:"username"`
	TotalRepositories int       `json:"total_repositories" db:"total_repositories"`
	TotalHTMLFiles    int       `json:"total_html_files"   db:"total_html_files"`
	CreatedAt         time.Time `json:"created_at"         db:"created_at"`
}

// RepositoryAnalysis summarizes one repository inside a session.
type RepositoryAnalysis struct {
	ID             string    `json:"id"               db:"id"`
	SessionID      string    `json:"session_id"       db:"session_id"`
	RepositoryName string    `json:"repository_name"  db:"repository_name"`
	Language       string    `json:"language"         db:"language"`
	LastUpdated    time.Time `json:"last_updated"     db:"last_updated"`
	IsStatic       bool      `json:"is_static"        db:"is_static"`
	HTMLFilesCount int       `json:"html_files_count" db:"html_files_count"`
	CreatedAt      time.Time `json:"created_at"       db:"created_at"`
}

// FileRecord is the persisted, flattened form of FileMetrics for one analyzed
// file, plus aggregate issue counts. Individual issues are not stored.
type FileRecord struct {
	ID             string `json:"id"               db:"id"`
	RepoAnalysisID string `json:"repo_analysis_id" db:"repo_analysis_id"`
	FileName       string `json:"file_name"        db:"file_name"`
	FilePath       string `json:"file_path"        db:"file_path"`
	FileSize       int64  `json:"file_size"        db:"file_size"`

	HasDoctype         bool `json:"has_doctype"          db:"has_doctype"`
	HasLangAttribute   bool `json:"has_lang_attribute"   db:"has_lang_attribute"`
	HasMetaCharset     bool `json:"has_meta_charset"     db:"has_meta_charset"`
	HasMetaViewport    bool `json:"has_meta_viewport"    db:"has_meta_viewport"`
	HasMetaDescription bool `json:"has_meta_description" db:"has_meta_description"`
	HasTitle           bool `json:"has_title"            db:"has_title"`

	SemanticElementsUsed  []string `json:"semantic_elements_used"  db:"semantic_elements_used"`
	SemanticElementsCount int      `json:"semantic_elements_count" db:"semantic_elements_count"`
	UsesMain              bool     `json:"uses_main"               db:"uses_main"`
	UsesNav               bool     `json:"uses_nav"                db:"uses_nav"`
	UsesHeader            bool     `json:"uses_header"             db:"uses_header"`
	UsesFooter            bool     `json:"uses_footer"             db:"uses_footer"`
	UsesSection           bool     `json:"uses_section"            db:"uses_section"`
	UsesArticle           bool     `json:"uses_article"            db:"uses_article"`

	TotalImages      int     `json:"total_images"       db:"total_images"`
	ImagesWithoutAlt int     `json:"images_without_alt" db:"images_without_alt"`
	AltTagCoverage   float64 `json:"alt_tag_coverage"   db:"alt_tag_coverage"`

	HeadingLevels             []int `json:"heading_levels"               db:"heading_levels"`
	TotalHeadings             int   `json:"total_headings"               db:"total_headings"`
	HasProperHeadingHierarchy bool  `json:"has_proper_heading_hierarchy" db:"has_proper_heading_hierarchy"`

	TotalElements int     `json:"total_elements" db:"total_elements"`
	DivElements   int     `json:"div_elements"   db:"div_elements"`
	SemanticRatio float64 `json:"semantic_ratio" db:"semantic_ratio"`

	IssuesCount    int `json:"issues_count"    db:"issues_count"`
	CriticalIssues int `json:"critical_issues" db:"critical_issues"`
	WarningIssues  int `json:"warning_issues"  db:"warning_issues"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewFileRecord flattens one file analysis into its persisted form.
func NewFileRecord(repoAnalysisID string, fa FileAnalysis) FileRecord {
	m := fa.Metrics

	critical := 0
	warnings := 0
	for _, issue := range fa.Issues {
		switch issue.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warnings++
		}
	}

	return FileRecord{
		RepoAnalysisID: repoAnalysisID,
		FileName:       fa.FileName,
		FilePath:       fa.FilePath,
		FileSize:       fa.FileSize,

		HasDoctype:         m.HasDoctype,
		HasLangAttribute:   m.HasLangAttribute,
		HasMetaCharset:     m.HasMetaCharset,
		HasMetaViewport:    m.HasMetaViewport,
		HasMetaDescription: m.HasMetaDescription,
		HasTitle:           m.HasTitle,

		SemanticElementsUsed:  m.SemanticElementsUsed,
		SemanticElementsCount: m.SemanticElementsCount,
		UsesMain:              m.UsesMain,
		UsesNav:               m.UsesNav,
		UsesHeader:            m.UsesHeader,
		UsesFooter:            m.UsesFooter,
		UsesSection:           m.UsesSection,
		UsesArticle:           m.UsesArticle,

		TotalImages:      m.TotalImages,
		ImagesWithoutAlt: m.ImagesWithoutAlt,
		AltTagCoverage:   m.AltCoverage(),

		HeadingLevels:             m.HeadingLevels,
		TotalHeadings:             m.TotalHeadings,
		HasProperHeadingHierarchy: m.HasProperHeadingHierarchy,

		TotalElements: m.TotalElements,
		DivElements:   m.DivElements,
		SemanticRatio: m.SemanticRatio(),

		IssuesCount:    len(fa.Issues),
		CriticalIssues: critical,
		WarningIssues:  warnings,
	}
}

// SessionSnapshot is a session with its nested repository and file records, as
// returned by the history query. Snapshots are read-only views of history.
type SessionSnapshot struct {
	Session      AnalysisSession      `json:"session"`
	Repositories []RepositorySnapshot `json:"repositories"`
}

// RepositorySnapshot pairs one repository analysis with its file records.
type RepositorySnapshot struct {
	Analysis RepositoryAnalysis `json:"analysis"`
	Files    []FileRecord       `json:"files"`
}

// FileRecords returns every file record in the snapshot across repositories.
func (s SessionSnapshot) FileRecords() []FileRecord {
	var records []FileRecord
	for _, repo := range s.Repositories {
		records = append(records, repo.Files...)
	}
	return records
}
