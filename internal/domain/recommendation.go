package domain

// Recommendation is an actionable improvement suggestion. Recommendations are
// presentation output only and never persisted.
type Recommendation struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ExampleCode string `json:"example_code,omitempty"`
	Priority    string `json:"priority"`
}

// Recommendation priority constants.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Recommendation category constants.
const (
	CategorySemantics     = "semantics"
	CategoryAccessibility = "accessibility"
	CategorySEO           = "seo"
	CategoryStructure     = "structure"
)

// PriorityRank maps a priority to a sortable weight, higher meaning more urgent.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}
