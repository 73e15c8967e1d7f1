package domain

// Issue flags a single problem found in an analyzed document. Issues are
// rebuilt on every analysis; only their aggregate counts reach the file record.
type Issue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	ElementPath string `json:"element_path,omitempty"`
	LineNumber  int    `json:"line_number,omitempty"`
}

// Issue severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Issue type constants.
const (
	IssueEmptyFile                = "empty_file"
	IssueParseError               = "parse_error"
	IssueMissingDoctype           = "missing_doctype"
	IssueMissingLangAttribute     = "missing_lang_attribute"
	IssueMissingCharset           = "missing_charset"
	IssueMissingViewport          = "missing_viewport"
	IssueMissingTitle             = "missing_title"
	IssueMissingAltText           = "missing_alt_text"
	IssueMissingMainElement       = "missing_main_element"
	IssueImproperHeadingHierarchy = "improper_heading_hierarchy"

	// IssueMissingMetaDescription is recognized by the recommendation rules
	// but never raised by the per-file detector.
	IssueMissingMetaDescription = "missing_meta_description"
)
