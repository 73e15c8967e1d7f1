package analysis

import (
	"testing"
	"time"

	"github.com/markuplens/markuplens/internal/domain"
)

func snapshotWith(id string, createdAt time.Time, files ...domain.FileRecord) domain.SessionSnapshot {
	return domain.SessionSnapshot{
		Session: domain.AnalysisSession{
			ID:                id,
			Username:          "octocat",
			TotalRepositories: 1,
			TotalHTMLFiles:    len(files),
			CreatedAt:         createdAt,
		},
		Repositories: []domain.RepositorySnapshot{{
			Analysis: domain.RepositoryAnalysis{ID: id + "-repo", SessionID: id, RepositoryName: "site"},
			Files:    files,
		}},
	}
}

func TestBuildPortfolioNoSessions(t *testing.T) {
	insights := BuildPortfolio("octocat", nil)

	if insights.HasData {
		t.Error("HasData = true, want false")
	}
	if insights.Username != "octocat" {
		t.Errorf("Username = %q, want octocat", insights.Username)
	}
	if got, want := insights.Message, "No analysis sessions found for this user. Run a scan first."; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
	if insights.Trends.SemanticDirection != domain.TrendNoData {
		t.Errorf("SemanticDirection = %q, want %q", insights.Trends.SemanticDirection, domain.TrendNoData)
	}
	if insights.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestBuildPortfolioEmptySession(t *testing.T) {
	sessions := []domain.SessionSnapshot{snapshotWith("s1", time.Now())}

	insights := BuildPortfolio("octocat", sessions)
	if insights.HasData {
		t.Error("HasData = true, want false")
	}
	if got, want := insights.Message, "The latest session contains no analyzed HTML files."; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestBuildPortfolio(t *testing.T) {
	f1 := domain.FileRecord{
		FilePath:                  "site/index.html",
		HasDoctype:                true,
		HasLangAttribute:          true,
		HasMetaCharset:            true,
		HasMetaViewport:           true,
		HasTitle:                  true,
		SemanticElementsUsed:      []string{"header", "main", "nav"},
		SemanticElementsCount:     3,
		UsesMain:                  true,
		TotalImages:               2,
		ImagesWithoutAlt:          1,
		AltTagCoverage:            50,
		HasProperHeadingHierarchy: true,
		SemanticRatio:             30,
	}
	f2 := domain.FileRecord{
		FilePath:              "site/about.html",
		HasDoctype:            true,
		SemanticElementsUsed:  []string{"header"},
		SemanticElementsCount: 1,
		SemanticRatio:         10,
	}
	now := time.Now()
	sessions := []domain.SessionSnapshot{snapshotWith("s1", now, f1, f2)}

	insights := BuildPortfolio("octocat", sessions)
	if !insights.HasData {
		t.Fatal("HasData = false, want true")
	}

	t.Run("overview", func(t *testing.T) {
		o := insights.Overview
		if o.SessionID != "s1" {
			t.Errorf("SessionID = %q, want s1", o.SessionID)
		}
		if o.TotalHTMLFiles != 2 {
			t.Errorf("TotalHTMLFiles = %d, want 2", o.TotalHTMLFiles)
		}
		if !almostEqual(o.AverageSemanticRatio, 20) {
			t.Errorf("AverageSemanticRatio = %v, want 20", o.AverageSemanticRatio)
		}
		// Only the first file has images, so only it counts toward coverage.
		if !almostEqual(o.AverageAltCoverage, 50) {
			t.Errorf("AverageAltCoverage = %v, want 50", o.AverageAltCoverage)
		}
		// structure (85 + 10) / 2, semantic 20 * 2, accessibility 50.
		want := (47.5 + 40.0 + 50.0) / 3
		if !almostEqual(o.OverallQualityScore, want) {
			t.Errorf("OverallQualityScore = %v, want %v", o.OverallQualityScore, want)
		}
	})

	t.Run("semantic insights", func(t *testing.T) {
		s := insights.Semantic
		if s.TotalSemanticElements != 4 {
			t.Errorf("TotalSemanticElements = %d, want 4", s.TotalSemanticElements)
		}
		wantUsage := []domain.ElementUsage{
			{Element: "header", FileCount: 2},
			{Element: "main", FileCount: 1},
			{Element: "nav", FileCount: 1},
		}
		if len(s.ElementUsage) != len(wantUsage) {
			t.Fatalf("got %d usage entries, want %d", len(s.ElementUsage), len(wantUsage))
		}
		for i, want := range wantUsage {
			if s.ElementUsage[i] != want {
				t.Errorf("ElementUsage[%d] = %+v, want %+v", i, s.ElementUsage[i], want)
			}
		}
		if s.FilesUsingMain != 1 || s.FilesWithoutMain != 1 {
			t.Errorf("FilesUsingMain = %d, FilesWithoutMain = %d, want 1 and 1", s.FilesUsingMain, s.FilesWithoutMain)
		}
	})

	t.Run("accessibility insights", func(t *testing.T) {
		a := insights.Accessibility
		if a.TotalImages != 2 || a.ImagesWithoutAlt != 1 {
			t.Errorf("TotalImages = %d, ImagesWithoutAlt = %d, want 2 and 1", a.TotalImages, a.ImagesWithoutAlt)
		}
		if a.FilesWithProperHeadings != 1 {
			t.Errorf("FilesWithProperHeadings = %d, want 1", a.FilesWithProperHeadings)
		}
		if !almostEqual(a.HeadingHierarchyRate, 50) {
			t.Errorf("HeadingHierarchyRate = %v, want 50", a.HeadingHierarchyRate)
		}
		if !almostEqual(a.Score, 50) {
			t.Errorf("Score = %v, want 50", a.Score)
		}
	})

	t.Run("structure insights", func(t *testing.T) {
		s := insights.Structure
		if s.FilesWithDoctype != 2 {
			t.Errorf("FilesWithDoctype = %d, want 2", s.FilesWithDoctype)
		}
		if s.FilesWithLang != 1 || s.FilesWithCharset != 1 || s.FilesWithViewport != 1 || s.FilesWithTitle != 1 {
			t.Errorf("per-flag counts = %+v, want 1 each for lang/charset/viewport/title", s)
		}
		if s.FilesWithMetaDescription != 0 {
			t.Errorf("FilesWithMetaDescription = %d, want 0", s.FilesWithMetaDescription)
		}
		if !almostEqual(s.AverageStructureScore, 47.5) {
			t.Errorf("AverageStructureScore = %v, want 47.5", s.AverageStructureScore)
		}
		// (2 + 1 + 1 + 1) flags over 2 files and 4 checks.
		if !almostEqual(s.ConsistencyScore, 62.5) {
			t.Errorf("ConsistencyScore = %v, want 62.5", s.ConsistencyScore)
		}
	})

	t.Run("recommendations ranked by priority", func(t *testing.T) {
		var titles []string
		for _, rec := range insights.Recommendations {
			titles = append(titles, rec.Title)
		}
		// Mean ratio is exactly 20, so the semantic rule stays quiet; the
		// high-priority alt advice sorts ahead of the medium and low rules.
		want := []string{
			"Add alt text to all images",
			"Add meta descriptions",
			"Fix heading hierarchies",
			"Add <main> landmarks",
		}
		if len(titles) != len(want) {
			t.Fatalf("got %d recommendations %v, want %d", len(titles), titles, len(want))
		}
		for i := range want {
			if titles[i] != want[i] {
				t.Errorf("recommendations[%d] = %q, want %q", i, titles[i], want[i])
			}
		}
	})
}

func TestBuildPortfolioAltCoverageAsymmetry(t *testing.T) {
	// A portfolio with no images at all: the accessibility score treats alt
	// coverage as perfect, while the reported average reads as zero.
	f := domain.FileRecord{
		HasDoctype:                true,
		HasLangAttribute:          true,
		HasMetaCharset:            true,
		HasMetaViewport:           true,
		HasMetaDescription:        true,
		HasTitle:                  true,
		UsesMain:                  true,
		HasProperHeadingHierarchy: true,
		SemanticRatio:             30,
	}
	sessions := []domain.SessionSnapshot{snapshotWith("s1", time.Now(), f)}

	insights := BuildPortfolio("octocat", sessions)
	if !almostEqual(insights.Accessibility.Score, 100) {
		t.Errorf("Accessibility.Score = %v, want 100", insights.Accessibility.Score)
	}
	if insights.Accessibility.AverageAltCoverage != 0 {
		t.Errorf("AverageAltCoverage = %v, want 0", insights.Accessibility.AverageAltCoverage)
	}
	if insights.Overview.AverageAltCoverage != 0 {
		t.Errorf("Overview.AverageAltCoverage = %v, want 0", insights.Overview.AverageAltCoverage)
	}
}

func TestMeanAltCoverageSkipsImagelessFiles(t *testing.T) {
	files := []domain.FileRecord{
		{TotalImages: 5, AltTagCoverage: 40},
		{}, // no images, excluded from the mean
	}
	if got := meanAltCoverage(files); !almostEqual(got, 40) {
		t.Errorf("meanAltCoverage() = %v, want 40", got)
	}
}
