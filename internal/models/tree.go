package models

// PointsPerLevel is the number of aura points needed to grow one tree level.
const PointsPerLevel = 500

// TreeLevel returns the aura tree level for a point total.
func TreeLevel(points int) int {
	if points < 0 {
		points = 0
	}
	return 1 + points/PointsPerLevel
}

// TreeLevelName returns the display name of a tree level.
func TreeLevelName(level int) string {
	switch {
	case level >= 20:
		return "Ancient Wisdom Tree"
	case level >= 15:
		return "Majestic Elder Tree"
	case level >= 10:
		return "Flourishing Canopy Tree"
	case level >= 5:
		return "Growing Spirit Tree"
	default:
		return "Blooming Spirit Tree"
	}
}

// AuraSummary describes a user's tree growth.
type AuraSummary struct {
	AuraPoints        int     `json:"auraPoints"`
	TreeLevel         int     `json:"treeLevel"`
	TreeType          string  `json:"treeType"`
	LevelName         string  `json:"levelName"`
	PointsIntoLevel   int     `json:"pointsIntoLevel"`
	PointsToNextLevel int     `json:"pointsToNextLevel"`
	Progress          float64 `json:"progress"`
}

// SummarizeAura builds the tree summary for a user.
func SummarizeAura(u *User) AuraSummary {
	points := u.AuraPoints
	if points < 0 {
		points = 0
	}
	level := TreeLevel(points)
	into := points % PointsPerLevel
	return AuraSummary{
		AuraPoints:        u.AuraPoints,
		TreeLevel:         level,
		TreeType:          u.TreeType,
		LevelName:         TreeLevelName(level),
		PointsIntoLevel:   into,
		PointsToNextLevel: PointsPerLevel - into,
		Progress:          float64(into) / float64(PointsPerLevel),
	}
}
