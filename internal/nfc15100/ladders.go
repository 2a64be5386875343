package nfc15100

import "sort"

// Standard breaker ratings (A)
var StandardBreakers = []float64{10, 16, 20, 25, 32, 40, 50, 63, 80, 100, 125, 160, 200, 250, 400, 630}

// Standard commercial conductor cross-sections (mm²)
var StandardSections = []float64{1.5, 2.5, 4, 6, 10, 16, 25, 35, 50, 70, 95, 120, 150, 185, 240, 300}

// SmallestAtLeast returns the smallest ladder entry >= v. The ladder must be
// strictly increasing. The second return value is false when every entry is
// below v.
func SmallestAtLeast(ladder []float64, v float64) (float64, bool) {
	i := sort.SearchFloat64s(ladder, v)
	if i == len(ladder) {
		return 0, false
	}
	return ladder[i], true
}

// Largest returns the last ladder entry.
func Largest(ladder []float64) float64 {
	if len(ladder) == 0 {
		return 0
	}
	return ladder[len(ladder)-1]
}

// IndexOf returns the position of v in the ladder, or -1.
func IndexOf(ladder []float64, v float64) int {
	i := sort.SearchFloat64s(ladder, v)
	if i < len(ladder) && ladder[i] == v {
		return i
	}
	return -1
}
