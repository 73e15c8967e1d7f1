package domain

// FileMetrics holds everything measured in a single HTML document.
// Derived percentages are methods, never fields; the persisted snapshot of a
// metrics object is FileRecord.
type FileMetrics struct {
	// Document structure
	HasDoctype         bool `json:"has_doctype"`
	HasLangAttribute   bool `json:"has_lang_attribute"`
	HasMetaCharset     bool `json:"has_meta_charset"`
	HasMetaViewport    bool `json:"has_meta_viewport"`
	HasMetaDescription bool `json:"has_meta_description"`
	HasTitle           bool `json:"has_title"`

	// Semantic vocabulary
	SemanticElementsUsed  []string `json:"semantic_elements_used"`
	SemanticElementsCount int      `json:"semantic_elements_count"`
	UsesMain              bool     `json:"uses_main"`
	UsesNav               bool     `json:"uses_nav"`
	UsesHeader            bool     `json:"uses_header"`
	UsesFooter            bool     `json:"uses_footer"`
	UsesSection           bool     `json:"uses_section"`
	UsesArticle           bool     `json:"uses_article"`

	// Images
	TotalImages      int `json:"total_images"`
	ImagesWithoutAlt int `json:"images_without_alt"`

	// Headings, sorted by level rather than document order
	HeadingLevels             []int `json:"heading_levels"`
	TotalHeadings             int   `json:"total_headings"`
	HasProperHeadingHierarchy bool  `json:"has_proper_heading_hierarchy"`

	// Element totals
	TotalElements int `json:"total_elements"`
	DivElements   int `json:"div_elements"`
}

// AltCoverage returns the percentage of images carrying a non-empty alt
// attribute. A document without images scores 0.
func (m FileMetrics) AltCoverage() float64 {
	if m.TotalImages == 0 {
		return 0
	}
	return float64(m.TotalImages-m.ImagesWithoutAlt) / float64(m.TotalImages) * 100
}

// SemanticRatio returns semantic elements as a percentage of all elements.
func (m FileMetrics) SemanticRatio() float64 {
	if m.TotalElements == 0 {
		return 0
	}
	return float64(m.SemanticElementsCount) / float64(m.TotalElements) * 100
}

// FileAnalysis bundles everything produced for one file in a single pass.
type FileAnalysis struct {
	FileName        string           `json:"file_name"`
	FilePath        string           `json:"file_path"`
	FileSize        int64            `json:"file_size"`
	Metrics         FileMetrics      `json:"metrics"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
}
