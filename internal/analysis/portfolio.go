package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/markuplens/markuplens/internal/domain"
)

// BuildPortfolio derives the full insight view from recent session snapshots,
// newest first. Snapshots are read-only; nothing here writes back to history.
func BuildPortfolio(username string, sessions []domain.SessionSnapshot) *domain.PortfolioInsights {
	insights := &domain.PortfolioInsights{
		Username:    username,
		GeneratedAt: time.Now().UTC(),
		Trends:      Trends(sessions),
	}

	if len(sessions) == 0 {
		insights.Message = "No analysis sessions found for this user. Run a scan first."
		return insights
	}

	latest := sessions[0]
	files := latest.FileRecords()
	if len(files) == 0 {
		insights.Message = "The latest session contains no analyzed HTML files."
		return insights
	}

	insights.HasData = true
	insights.Overview = buildOverview(latest, files)
	insights.Semantic = buildSemanticInsights(files)
	insights.Accessibility = buildAccessibilityInsights(files)
	insights.Structure = buildStructureInsights(files)
	insights.Recommendations = PortfolioRecommendations(files)
	return insights
}

func buildOverview(latest domain.SessionSnapshot, files []domain.FileRecord) domain.PortfolioOverview {
	return domain.PortfolioOverview{
		SessionID:            latest.Session.ID,
		AnalyzedAt:           latest.Session.CreatedAt,
		TotalRepositories:    latest.Session.TotalRepositories,
		TotalHTMLFiles:       len(files),
		AverageSemanticRatio: meanSemanticRatio(files),
		AverageAltCoverage:   meanAltCoverage(files),
		OverallQualityScore:  OverallQualityScore(files),
	}
}

func buildSemanticInsights(files []domain.FileRecord) domain.SemanticInsights {
	usage := make(map[string]int)
	totalElements := 0
	usingMain := 0
	for _, f := range files {
		totalElements += f.SemanticElementsCount
		for _, element := range f.SemanticElementsUsed {
			usage[element]++
		}
		if f.UsesMain {
			usingMain++
		}
	}

	ranked := make([]domain.ElementUsage, 0, len(usage))
	for element, count := range usage {
		ranked = append(ranked, domain.ElementUsage{Element: element, FileCount: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].FileCount != ranked[j].FileCount {
			return ranked[i].FileCount > ranked[j].FileCount
		}
		return ranked[i].Element < ranked[j].Element
	})

	return domain.SemanticInsights{
		AverageSemanticRatio:  meanSemanticRatio(files),
		TotalSemanticElements: totalElements,
		ElementUsage:          ranked,
		FilesUsingMain:        usingMain,
		FilesWithoutMain:      len(files) - usingMain,
	}
}

func buildAccessibilityInsights(files []domain.FileRecord) domain.AccessibilityInsights {
	totalImages := 0
	missingAlt := 0
	properCount := 0
	for _, f := range files {
		totalImages += f.TotalImages
		missingAlt += f.ImagesWithoutAlt
		if f.HasProperHeadingHierarchy {
			properCount++
		}
	}

	return domain.AccessibilityInsights{
		Score:                   AccessibilityScore(files),
		AverageAltCoverage:      meanAltCoverage(files),
		TotalImages:             totalImages,
		ImagesWithoutAlt:        missingAlt,
		FilesWithProperHeadings: properCount,
		HeadingHierarchyRate:    float64(properCount) / float64(len(files)) * 100,
	}
}

func buildStructureInsights(files []domain.FileRecord) domain.StructureInsights {
	out := domain.StructureInsights{
		ConsistencyScore: ConsistencyScore(files),
	}

	structureSum := 0.0
	for _, f := range files {
		structureSum += StructureScore(f)
		if f.HasDoctype {
			out.FilesWithDoctype++
		}
		if f.HasLangAttribute {
			out.FilesWithLang++
		}
		if f.HasMetaCharset {
			out.FilesWithCharset++
		}
		if f.HasMetaViewport {
			out.FilesWithViewport++
		}
		if f.HasMetaDescription {
			out.FilesWithMetaDescription++
		}
		if f.HasTitle {
			out.FilesWithTitle++
		}
	}
	out.AverageStructureScore = structureSum / float64(len(files))
	return out
}

// PortfolioRecommendations synthesizes portfolio-scope suggestions from
// aggregate counts and ranks them by priority.
func PortfolioRecommendations(files []domain.FileRecord) []domain.Recommendation {
	var recs []domain.Recommendation

	totalImages := 0
	missingAlt := 0
	withoutMain := 0
	withoutMetaDescription := 0
	improperHeadings := 0
	for _, f := range files {
		totalImages += f.TotalImages
		missingAlt += f.ImagesWithoutAlt
		if !f.UsesMain {
			withoutMain++
		}
		if !f.HasMetaDescription {
			withoutMetaDescription++
		}
		if !f.HasProperHeadingHierarchy {
			improperHeadings++
		}
	}

	if ratio := meanSemanticRatio(files); ratio < semanticRatioTarget {
		recs = append(recs, domain.Recommendation{
			Category:    domain.CategorySemantics,
			Title:       "Increase semantic HTML usage",
			Description: fmt.Sprintf("The average semantic ratio across the portfolio is %.1f%%. Replace generic <div> wrappers with semantic elements.", ratio),
			ExampleCode: semanticExampleCode,
			Priority:    domain.PriorityMedium,
		})
	}

	if totalImages > 0 && missingAlt > 0 {
		recs = append(recs, domain.Recommendation{
			Category:    domain.CategoryAccessibility,
			Title:       "Add alt text to all images",
			Description: fmt.Sprintf("%d of %d images across the portfolio are missing alt text.", missingAlt, totalImages),
			Priority:    domain.PriorityHigh,
		})
	}

	if withoutMetaDescription > 0 {
		recs = append(recs, domain.Recommendation{
			Category:    domain.CategorySEO,
			Title:       "Add meta descriptions",
			Description: fmt.Sprintf("%d files have no meta description. Search engines fall back to arbitrary page text without one.", withoutMetaDescription),
			ExampleCode: `<meta name="description" content="A short summary of the page.">`,
			Priority:    domain.PriorityMedium,
		})
	}

	if improperHeadings > 0 {
		recs = append(recs, domain.Recommendation{
			Category:    domain.CategoryStructure,
			Title:       "Fix heading hierarchies",
			Description: fmt.Sprintf("%d files skip heading levels or do not start at h1.", improperHeadings),
			Priority:    domain.PriorityMedium,
		})
	}

	if withoutMain > 0 {
		recs = append(recs, domain.Recommendation{
			Category:    domain.CategoryStructure,
			Title:       "Add <main> landmarks",
			Description: fmt.Sprintf("%d files lack a <main> element marking their primary content.", withoutMain),
			Priority:    domain.PriorityLow,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return domain.PriorityRank(recs[i].Priority) > domain.PriorityRank(recs[j].Priority)
	})
	return recs
}

// meanAltCoverage averages alt coverage over files that contain images.
// Unlike AccessibilityScore, a set with no images at all averages to 0.
func meanAltCoverage(files []domain.FileRecord) float64 {
	sum := 0.0
	withImages := 0
	for _, f := range files {
		if f.TotalImages > 0 {
			withImages++
			sum += f.AltTagCoverage
		}
	}
	if withImages == 0 {
		return 0
	}
	return sum / float64(withImages)
}

func meanSemanticRatio(files []domain.FileRecord) float64 {
	if len(files) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range files {
		sum += f.SemanticRatio
	}
	return sum / float64(len(files))
}
