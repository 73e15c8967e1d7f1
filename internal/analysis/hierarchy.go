package analysis

// ProperHeadingHierarchy validates heading levels that have already been
// sorted ascending. An empty list passes. The first level must be 1, and no
// step between successive levels may skip more than one. Repeated levels are
// always fine.
func ProperHeadingHierarchy(levels []int) bool {
	if len(levels) == 0 {
		return true
	}
	if levels[0] != 1 {
		return false
	}
	for i := 1; i < len(levels); i++ {
		if levels[i]-levels[i-1] > 1 {
			return false
		}
	}
	return true
}
