package models

import "strings"

// Mood is one of the fixed mood tags shared by posts, capsules, circles and stats.
// It maps to the mood_type enum in PostgreSQL.
type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodStressed   Mood = "stressed"
	MoodCalm       Mood = "calm"
	MoodMotivated  Mood = "motivated"
	MoodCurious    Mood = "curious"
	MoodGrateful   Mood = "grateful"
	MoodExcited    Mood = "excited"
	MoodPeaceful   Mood = "peaceful"
	MoodEnergetic  Mood = "energetic"
	MoodReflective Mood = "reflective"
)

// Moods lists every mood in enum order.
var Moods = []Mood{
	MoodHappy,
	MoodStressed,
	MoodCalm,
	MoodMotivated,
	MoodCurious,
	MoodGrateful,
	MoodExcited,
	MoodPeaceful,
	MoodEnergetic,
	MoodReflective,
}

// Valid reports whether m is one of the enum values.
func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

// Title returns the mood with its first letter upper-cased ("happy" -> "Happy").
func (m Mood) Title() string {
	if m == "" {
		return ""
	}
	s := string(m)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseMood normalizes s and reports whether it names a mood.
func ParseMood(s string) (Mood, bool) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}
