package engine

import "math"

// XPRequiredCoef sets the leveling curve: XP_req = 100 * (Level^1.5).
const XPRequiredCoef = 100.0

// PointsPerXP is the points-to-XP exchange rate: completing a habit grants
// twice its XP value in spendable points.
const PointsPerXP = 2

// XPRequiredForLevel returns the total XP threshold required to be at the
// given level. Level 0 requires 0 XP.
func XPRequiredForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	req := XPRequiredCoef * math.Pow(float64(level), 1.5)
	// Ceil so floating point rounding never lowers a threshold.
	return int(math.Ceil(req))
}

// LevelForTotalXP returns the highest level L such that
// totalXP >= XPRequiredForLevel(L).
func LevelForTotalXP(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}

	low := 0
	high := 1
	for XPRequiredForLevel(high) <= totalXP {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}
	for low+1 < high {
		mid := low + (high-low)/2
		if XPRequiredForLevel(mid) <= totalXP {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}
