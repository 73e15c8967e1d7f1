package analysis

import (
	"math"

	"github.com/markuplens/markuplens/internal/domain"
)

// Structure score weights. They sum to exactly 100.
const (
	weightDoctype         = 10.0
	weightLang            = 10.0
	weightCharset         = 15.0
	weightViewport        = 10.0
	weightMetaDescription = 15.0
	weightTitle           = 15.0
	weightHierarchy       = 25.0
)

// StructureScore grades one file's document structure on a 0-100 scale.
func StructureScore(r domain.FileRecord) float64 {
	score := 0.0
	if r.HasDoctype {
		score += weightDoctype
	}
	if r.HasLangAttribute {
		score += weightLang
	}
	if r.HasMetaCharset {
		score += weightCharset
	}
	if r.HasMetaViewport {
		score += weightViewport
	}
	if r.HasMetaDescription {
		score += weightMetaDescription
	}
	if r.HasTitle {
		score += weightTitle
	}
	if r.HasProperHeadingHierarchy {
		score += weightHierarchy
	}
	return score
}

// AccessibilityScore grades a file set on a 0-100 scale as the mean of three
// components: alt coverage over files that contain images (100 when no file
// does), the share of files with a proper heading hierarchy, and lang/title
// presence worth 50 points each. An empty set scores 100.
func AccessibilityScore(files []domain.FileRecord) float64 {
	if len(files) == 0 {
		return 100
	}

	altSum := 0.0
	withImages := 0
	properCount := 0
	langTitleSum := 0.0

	for _, f := range files {
		if f.TotalImages > 0 {
			withImages++
			altSum += f.AltTagCoverage
		}
		if f.HasProperHeadingHierarchy {
			properCount++
		}
		if f.HasLangAttribute {
			langTitleSum += 50
		}
		if f.HasTitle {
			langTitleSum += 50
		}
	}

	altCoverage := 100.0
	if withImages > 0 {
		altCoverage = altSum / float64(withImages)
	}
	properShare := float64(properCount) / float64(len(files)) * 100
	langTitle := langTitleSum / float64(len(files))

	return (altCoverage + properShare + langTitle) / 3
}

// ConsistencyScore measures how uniformly doctype, lang, viewport, and title
// hold across a file set. An empty set scores 100.
func ConsistencyScore(files []domain.FileRecord) float64 {
	if len(files) == 0 {
		return 100
	}

	var doctype, lang, viewport, title int
	for _, f := range files {
		if f.HasDoctype {
			doctype++
		}
		if f.HasLangAttribute {
			lang++
		}
		if f.HasMetaViewport {
			viewport++
		}
		if f.HasTitle {
			title++
		}
	}

	n := float64(len(files))
	return (float64(doctype) + float64(lang) + float64(viewport) + float64(title)) / n * 100 / 4
}

// OverallQualityScore blends structure, semantic adoption, and accessibility
// into a single 0-100 number. The mean semantic ratio is doubled and capped
// at 100 before blending.
func OverallQualityScore(files []domain.FileRecord) float64 {
	if len(files) == 0 {
		return 0
	}

	var structureSum, semanticSum float64
	for _, f := range files {
		structureSum += StructureScore(f)
		semanticSum += f.SemanticRatio
	}

	n := float64(len(files))
	structure := structureSum / n
	semantic := math.Min(semanticSum/n*2, 100)

	return (structure + semantic + AccessibilityScore(files)) / 3
}
