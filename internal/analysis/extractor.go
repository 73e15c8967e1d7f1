// Package analysis implements the deterministic HTML quality engine: metric
// extraction, issue detection, recommendation synthesis, score calculation,
// portfolio aggregation, and trend classification.
package analysis

import (
	"sort"
	"strings"

	"github.com/markuplens/markuplens/internal/domain"
	"github.com/markuplens/markuplens/internal/port"
)

// SemanticElements is the vocabulary of semantic tags the extractor counts.
// It is passed explicitly to NewAnalyzer and never mutated.
var SemanticElements = []string{
	"article", "aside", "details", "figcaption", "figure", "footer",
	"header", "main", "mark", "nav", "section", "summary", "time",
}

// Analyzer runs the per-file pipeline: parse, extract, detect, recommend.
// Analyzers are stateless and safe for concurrent use.
type Analyzer struct {
	parser       port.DocumentParser
	semanticTags []string
}

// NewAnalyzer creates an analyzer using the given parser and semantic
// vocabulary. Pass SemanticElements for the standard tag set.
func NewAnalyzer(parser port.DocumentParser, semanticTags []string) *Analyzer {
	return &Analyzer{parser: parser, semanticTags: semanticTags}
}

// AnalyzeFile produces metrics, issues, and recommendations for one file.
// Empty content and parse failures yield a single error issue with zero-valued
// metrics; they are reported outcomes, never returned errors.
func (a *Analyzer) AnalyzeFile(file domain.RepoFile) domain.FileAnalysis {
	result := domain.FileAnalysis{
		FileName: file.Name,
		FilePath: file.Path,
		FileSize: file.Size,
	}

	if strings.TrimSpace(file.Content) == "" {
		result.Issues = []domain.Issue{{
			Type:        domain.IssueEmptyFile,
			Description: "File is empty or its content could not be read",
			Severity:    domain.SeverityError,
			ElementPath: file.Path,
		}}
		return result
	}

	doc, err := a.parser.Parse(file.Content)
	if err != nil {
		result.Issues = []domain.Issue{{
			Type:        domain.IssueParseError,
			Description: "Failed to parse HTML: " + err.Error(),
			Severity:    domain.SeverityError,
			ElementPath: file.Path,
		}}
		return result
	}

	result.Metrics = a.ExtractMetrics(doc, file.Content)
	result.Issues = DetectIssues(result.Metrics)
	result.Recommendations = Recommend(result.Metrics, result.Issues)
	return result
}

// ExtractMetrics reads every metric from a parsed document. The raw source is
// consulted only for doctype detection, since parsers may fold the doctype
// away while repairing malformed input.
func (a *Analyzer) ExtractMetrics(doc port.Document, raw string) domain.FileMetrics {
	var m domain.FileMetrics

	m.HasDoctype = doc.HasDocumentType() || hasDoctypePrefix(raw)

	if html := doc.Find("html"); len(html) > 0 {
		_, m.HasLangAttribute = html[0].Attr("lang")
	}
	m.HasMetaCharset = doc.Count("head meta[charset]") > 0
	m.HasMetaViewport = doc.Count(`head meta[name="viewport"]`) > 0
	m.HasMetaDescription = doc.Count(`head meta[name="description"]`) > 0
	m.HasTitle = doc.Count("head title") > 0

	for _, tag := range a.semanticTags {
		n := doc.Count(tag)
		if n == 0 {
			continue
		}
		m.SemanticElementsUsed = append(m.SemanticElementsUsed, tag)
		m.SemanticElementsCount += n
		switch tag {
		case "main":
			m.UsesMain = true
		case "nav":
			m.UsesNav = true
		case "header":
			m.UsesHeader = true
		case "footer":
			m.UsesFooter = true
		case "section":
			m.UsesSection = true
		case "article":
			m.UsesArticle = true
		}
	}

	for _, img := range doc.Find("img") {
		m.TotalImages++
		if alt, ok := img.Attr("alt"); !ok || alt == "" {
			m.ImagesWithoutAlt++
		}
	}

	// Collected in document order, then sorted by level before validation.
	for _, h := range doc.Find("h1, h2, h3, h4, h5, h6") {
		m.HeadingLevels = append(m.HeadingLevels, headingLevel(h.Tag()))
	}
	sort.Ints(m.HeadingLevels)
	m.TotalHeadings = len(m.HeadingLevels)
	m.HasProperHeadingHierarchy = ProperHeadingHierarchy(m.HeadingLevels)

	m.TotalElements = doc.Count("*")
	m.DivElements = doc.Count("div")

	return m
}

// hasDoctypePrefix checks the raw source for a leading doctype declaration.
func hasDoctypePrefix(raw string) bool {
	const prefix = "<!doctype"
	trimmed := strings.TrimSpace(raw)
	return len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix)
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
