package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aura/internal/models"
)

type sample struct {
	Content string      `json:"content" validate:"required,max=20"`
	Mood    models.Mood `json:"mood" validate:"required,mood"`
	Vibe    string      `json:"type" validate:"omitempty,vibetype"`
	Secret  string      `json:"-"`
}

func TestStruct_Valid(t *testing.T) {
	require.NoError(t, Struct(&sample{Content: "hello", Mood: models.MoodCalm, Vibe: "heart"}))
}

func TestStruct_Messages(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"missing content", sample{Mood: models.MoodCalm}, "content is required"},
		{"too long", sample{Content: "this content is far too long", Mood: models.MoodCalm}, "content must be at most 20 characters"},
		{"bad mood", sample{Content: "x", Mood: "angry"}, "mood must be one of: happy, stressed, calm, motivated, curious, grateful, excited, peaceful, energetic, reflective"},
		{"bad vibe", sample{Content: "x", Mood: models.MoodCalm, Vibe: "Heart!"}, "type must be 2-32 lowercase letters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.in)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeValidation))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestValidateVibeType(t *testing.T) {
	for _, v := range KnownVibeTypes {
		assert.NoError(t, ValidateVibeType(v))
	}
	assert.Error(t, ValidateVibeType("x"))
	assert.Error(t, ValidateVibeType("UPPER"))
	assert.Error(t, ValidateVibeType(""))
}
