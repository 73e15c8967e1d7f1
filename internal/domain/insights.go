package domain

import "time"

// PortfolioInsights is the full derived view over a user's analysis history.
// It is recomputed on every request and never persisted.
type PortfolioInsights struct {
	Username    string    `json:"username"`
	GeneratedAt time.Time `json:"generated_at"`
	HasData     bool      `json:"has_data"`
	Message     string    `json:"message,omitempty"`

	Overview        PortfolioOverview     `json:"overview"`
	Semantic        SemanticInsights      `json:"semantic"`
	Accessibility   AccessibilityInsights `json:"accessibility"`
	Structure       StructureInsights     `json:"structure"`
	Trends          TrendInsights         `json:"trends"`
	Recommendations []Recommendation      `json:"recommendations"`
}

// PortfolioOverview carries the headline numbers from the latest session.
type PortfolioOverview struct {
	SessionID            string    `json:"session_id"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
	TotalRepositories    int       `json:"total_repositories"`
	TotalHTMLFiles       int       `json:"total_html_files"`
	AverageSemanticRatio float64   `json:"average_semantic_ratio"`
	AverageAltCoverage   float64   `json:"average_alt_coverage"`
	OverallQualityScore  float64   `json:"overall_quality_score"`
}

// ElementUsage counts the files using one semantic element.
type ElementUsage struct {
	Element   string `json:"element"`
	FileCount int    `json:"file_count"`
}

// SemanticInsights describes semantic-markup adoption across the portfolio.
type SemanticInsights struct {
	AverageSemanticRatio  float64        `json:"average_semantic_ratio"`
	TotalSemanticElements int            `json:"total_semantic_elements"`
	ElementUsage          []ElementUsage `json:"element_usage"`
	FilesUsingMain        int            `json:"files_using_main"`
	FilesWithoutMain      int            `json:"files_without_main"`
}

// AccessibilityInsights describes accessibility posture across the portfolio.
type AccessibilityInsights struct {
	Score                   float64 `json:"score"`
	AverageAltCoverage      float64 `json:"average_alt_coverage"`
	TotalImages             int     `json:"total_images"`
	ImagesWithoutAlt        int     `json:"images_without_alt"`
	FilesWithProperHeadings int     `json:"files_with_proper_headings"`
	HeadingHierarchyRate    float64 `json:"heading_hierarchy_rate"`
}

// StructureInsights describes document-structure consistency across the portfolio.
type StructureInsights struct {
	AverageStructureScore    float64 `json:"average_structure_score"`
	ConsistencyScore         float64 `json:"consistency_score"`
	FilesWithDoctype         int     `json:"files_with_doctype"`
	FilesWithLang            int     `json:"files_with_lang"`
	FilesWithCharset         int     `json:"files_with_charset"`
	FilesWithViewport        int     `json:"files_with_viewport"`
	FilesWithMetaDescription int     `json:"files_with_meta_description"`
	FilesWithTitle           int     `json:"files_with_title"`
}

// TrendInsights compares the latest session against the previous one.
type TrendInsights struct {
	SemanticDirection  string  `json:"semantic_direction"`
	SemanticDelta      float64 `json:"semantic_delta"`
	AccessibilityDelta float64 `json:"accessibility_delta"`
	CombinedDirection  string  `json:"combined_direction"`
	SessionsCompared   int     `json:"sessions_compared"`
	Message            string  `json:"message,omitempty"`
}

// Semantic trend directions.
const (
	TrendImproving = "📈 Improving"
	TrendDeclining = "📉 Declining"
	TrendStable    = "➡️ Stable"
	TrendNoData    = "No data"
)

// Combined trend directions. The combined trend sums the semantic and
// accessibility deltas and is classified separately from the semantic trend.
const (
	DirectionImproving = "Improving"
	DirectionDeclining = "Declining"
	DirectionStable    = "Stable"
	DirectionNoData    = "No data"
)
