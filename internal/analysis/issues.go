package analysis

import (
	"fmt"

	"github.com/markuplens/markuplens/internal/domain"
)

// issueRule is one entry in the detection table.
type issueRule struct {
	applies func(domain.FileMetrics) bool
	build   func(domain.FileMetrics) domain.Issue
}

// issueRules run in declaration order; the order is part of the output
// contract. Meta description deliberately has no entry here — it only
// surfaces as a portfolio-level recommendation.
var issueRules = []issueRule{
	{
		applies: func(m domain.FileMetrics) bool { return !m.HasDoctype },
		build: func(domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueMissingDoctype,
				Description: "Document is missing the <!DOCTYPE html> declaration",
				Severity:    domain.SeverityWarning,
				ElementPath: "html",
			}
		},
	},
	{
		applies: func(m domain.FileMetrics) bool { return !m.HasLangAttribute },
		build: func(domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueMissingLangAttribute,
				Description: "The <html> element has no lang attribute",
				Severity:    domain.SeverityWarning,
				ElementPath: "html",
			}
		},
	},
	{
		applies: func(m domain.FileMetrics) bool { return !m.HasMetaCharset },
		build: func(domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueMissingCharset,
				Description: "No <meta charset> declaration found in <head>",
				Severity:    domain.SeverityError,
				ElementPath: "head",
			}
		},
	},
	{
		applies: func(m domain.FileMetrics) bool { return !m.HasMetaViewport },
		build: func(domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueMissingViewport,
				Description: "No viewport meta tag found; the page will not scale on mobile",
				Severity:    domain.SeverityWarning,
				ElementPath: "head",
			}
		},
	},
	{
		applies: func(m domain.FileMetrics) bool { return !m.HasTitle },
		build: func(domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueMissingTitle,
				Description: "Document has no <title> element",
				Severity:    domain.SeverityError,
				ElementPath: "head",
			}
		},
	},
	{
		applies: func(m domain.FileMetrics) bool { return m.ImagesWithoutAlt > 0 },
		build: func(m domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueMissingAltText,
				Description: fmt.Sprintf("%d of %d images are missing alt text", m.ImagesWithoutAlt, m.TotalImages),
				Severity:    domain.SeverityWarning,
				ElementPath: "img",
			}
		},
	},
	{
		applies: func(m domain.FileMetrics) bool { return !m.UsesMain },
		build: func(domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueMissingMainElement,
				Description: "Document has no <main> landmark element",
				Severity:    domain.SeverityInfo,
				ElementPath: "body",
			}
		},
	},
	{
		applies: func(m domain.FileMetrics) bool { return !m.HasProperHeadingHierarchy },
		build: func(m domain.FileMetrics) domain.Issue {
			return domain.Issue{
				Type:        domain.IssueImproperHeadingHierarchy,
				Description: fmt.Sprintf("Heading levels %v skip a level or do not start at h1", m.HeadingLevels),
				Severity:    domain.SeverityWarning,
				ElementPath: "h1-h6",
			}
		},
	},
}

// DetectIssues evaluates every rule against the metrics, in fixed order.
func DetectIssues(m domain.FileMetrics) []domain.Issue {
	var issues []domain.Issue
	for _, rule := range issueRules {
		if rule.applies(m) {
			issues = append(issues, rule.build(m))
		}
	}
	return issues
}
