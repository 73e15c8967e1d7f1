package analysis

import (
	"fmt"

	"github.com/markuplens/markuplens/internal/domain"
)

// semanticRatioTarget is the semantic ratio below which a document is
// considered div-heavy.
const semanticRatioTarget = 20.0

const semanticExampleCode = `<header>
  <nav>...</nav>
</header>
<main>
  <article>...</article>
</main>
<footer>...</footer>`

// Recommend derives file-level improvement suggestions from the metrics and
// the detected issues.
func Recommend(m domain.FileMetrics, issues []domain.Issue) []domain.Recommendation {
	var recs []domain.Recommendation

	if m.SemanticRatio() < semanticRatioTarget {
		recs = append(recs, domain.Recommendation{
			Category:    domain.CategorySemantics,
			Title:       "Increase semantic HTML usage",
			Description: fmt.Sprintf("Only %.1f%% of elements are semantic. Replace generic <div> wrappers with semantic elements.", m.SemanticRatio()),
			ExampleCode: semanticExampleCode,
			Priority:    domain.PriorityMedium,
		})
	}

	if m.TotalImages > 0 && m.AltCoverage() < 100 {
		recs = append(recs, domain.Recommendation{
			Category:    domain.CategoryAccessibility,
			Title:       "Add alt text to all images",
			Description: fmt.Sprintf("%d of %d images have no alt attribute. Screen readers cannot describe them.", m.ImagesWithoutAlt, m.TotalImages),
			Priority:    domain.PriorityHigh,
		})
	}

	// The per-file detector never emits missing_meta_description, so this
	// branch does not currently fire; the signal surfaces at portfolio scope.
	for _, issue := range issues {
		if issue.Type == domain.IssueMissingMetaDescription {
			recs = append(recs, domain.Recommendation{
				Category:    domain.CategorySEO,
				Title:       "Add a meta description",
				Description: "A meta description improves how search engines present the page.",
				ExampleCode: `<meta name="description" content="A short summary of the page.">`,
				Priority:    domain.PriorityMedium,
			})
			break
		}
	}

	return recs
}
