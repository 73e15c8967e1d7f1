package analysis

import "github.com/markuplens/markuplens/internal/domain"

// Classification windows for movement between sessions. Deltas inside the
// window read as stable; the boundary itself is stable.
const (
	semanticTrendThreshold = 5.0
	combinedTrendThreshold = 10.0
)

// Trends compares the latest session against the previous one. Sessions are
// ordered newest first; both classifications need at least two.
func Trends(sessions []domain.SessionSnapshot) domain.TrendInsights {
	if len(sessions) < 2 {
		return domain.TrendInsights{
			SemanticDirection: domain.TrendNoData,
			CombinedDirection: domain.DirectionNoData,
			SessionsCompared:  len(sessions),
			Message:           "At least two analysis sessions are needed to compute trends.",
		}
	}

	latest := sessions[0].FileRecords()
	previous := sessions[1].FileRecords()

	semanticDelta := meanSemanticRatio(latest) - meanSemanticRatio(previous)
	accessibilityDelta := meanAltCoverage(latest) - meanAltCoverage(previous)

	return domain.TrendInsights{
		SemanticDirection:  classifySemanticTrend(semanticDelta),
		SemanticDelta:      semanticDelta,
		AccessibilityDelta: accessibilityDelta,
		CombinedDirection:  classifyCombinedTrend(semanticDelta + accessibilityDelta),
		SessionsCompared:   len(sessions),
	}
}

// classifySemanticTrend buckets the semantic-ratio delta into its ±5 window.
func classifySemanticTrend(delta float64) string {
	switch {
	case delta > semanticTrendThreshold:
		return domain.TrendImproving
	case delta < -semanticTrendThreshold:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// classifyCombinedTrend buckets the summed semantic and accessibility deltas
// into their ±10 window. This is a separate signal from the semantic trend
// and is never folded into it.
func classifyCombinedTrend(sum float64) string {
	switch {
	case sum > combinedTrendThreshold:
		return domain.DirectionImproving
	case sum < -combinedTrendThreshold:
		return domain.DirectionDeclining
	default:
		return domain.DirectionStable
	}
}
