package validation

import (
	"fmt"
	"regexp"
)

var vibeTypeRegex = regexp.MustCompile(`^[a-z_]{2,32}$`)

// KnownVibeTypes are the reactions the client offers. Other well-formed types are accepted.
var KnownVibeTypes = []string{"heart", "support", "calm", "motivation"}

// ValidateVibeType validates the free-form vibe type.
func ValidateVibeType(t string) error {
	if !vibeTypeRegex.MatchString(t) {
		return fmt.Errorf("vibe type must be 2-32 lowercase letters")
	}
	return nil
}
