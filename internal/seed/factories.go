// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"aura/internal/models"
	"aura/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// SystemUserID owns the built-in mood circles.
const SystemUserID = "system|aura"

var (
	treeTypes = []string{"oak", "willow", "cherry", "pine", "maple", "birch"}

	moodOpeners = map[models.Mood][]string{
		models.MoodHappy:      {"Today felt light.", "Smiling at nothing in particular.", "Good news at last."},
		models.MoodStressed:   {"Too many tabs open in my head.", "Deadlines stacking up again.", "Could use a long exhale."},
		models.MoodCalm:       {"Quiet morning, slow coffee.", "Nothing urgent for once.", "Listening to the rain."},
		models.MoodMotivated:  {"Back at it before sunrise.", "One more rep, one more page.", "Finally starting the thing."},
		models.MoodCurious:    {"Fell down a rabbit hole today.", "Does anyone else wonder about this?", "Learning something new."},
		models.MoodGrateful:   {"Thankful for small kindnesses.", "A friend checked in on me.", "Counting the good bits."},
		models.MoodExcited:    {"Big things are happening!", "Can't sit still today.", "Tickets booked!"},
		models.MoodPeaceful:   {"Sat by the water for an hour.", "Everything is where it should be.", "Soft light, soft music."},
		models.MoodEnergetic:  {"Ran further than planned.", "Cleaned the whole flat before lunch.", "Buzzing with ideas."},
		models.MoodReflective: {"Thinking about where I was a year ago.", "Old photos, old feelings.", "Writing it down so I remember."},
	}
)

// Factory builds domain entities with plausible fake content. It does not
// persist anything; the Seeder decides how rows are written.
type Factory struct {
	faker   *gofakeit.Faker
	maxDays int
	now     func() time.Time
}

// NewFactory creates a factory. A zero seed picks a random one.
func NewFactory(randSeed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		faker:   gofakeit.New(randSeed),
		maxDays: maxDays,
		now:     time.Now,
	}
}

// BuildUser returns a user with an identity-provider style subject.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	email := strings.ToLower(fmt.Sprintf("%s.%s.%s@aura.test", first, last, f.faker.UUID()[:8]))

	user := &models.User{
		ID:              "seed|" + f.faker.UUID(),
		Email:           &email,
		FirstName:       first,
		LastName:        last,
		DisplayName:     first + " " + last[:1] + ".",
		Bio:             f.faker.Sentence(8),
		Location:        f.faker.Country(),
		ProfileImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		TreeType:        f.faker.RandomString(treeTypes),
		TreeLevel:       1,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildPost returns a post by user with a created_at spread over the
// factory's window.
func (f *Factory) BuildPost(user *models.User, anonymous bool, overrides ...func(*models.Post)) *models.Post {
	mood := f.Mood()
	post := &models.Post{
		UserID:      user.ID,
		Mood:        mood,
		Content:     f.postContent(mood),
		IsAnonymous: anonymous,
		CreatedAt:   f.pastTime(),
	}
	post.UpdatedAt = post.CreatedAt

	// Roughly one post in three carries a location.
	if f.faker.Number(1, 3) == 1 {
		post.Location = f.faker.Country()
		lat := f.faker.Latitude()
		lng := f.faker.Longitude()
		post.Latitude = &lat
		post.Longitude = &lng
	}
	if f.faker.Number(1, 5) == 1 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	if f.faker.Number(1, 8) == 1 {
		post.MusicTitle = f.faker.Adjective() + " " + f.faker.Noun()
		post.MusicURL = "https://music.example/track/" + f.faker.UUID()
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildCapsule returns a sealed capsule due between one week and one year out.
func (f *Factory) BuildCapsule(user *models.User, overrides ...func(*models.TimeCapsule)) *models.TimeCapsule {
	now := f.now().UTC()
	capsule := &models.TimeCapsule{
		UserID:     user.ID,
		Mood:       f.Mood(),
		Content:    "Dear future me, " + f.faker.Sentence(12),
		UnlockDate: now.Add(time.Duration(f.faker.Number(7, 365)) * 24 * time.Hour).Truncate(time.Second),
		IsPublic:   f.faker.Bool(),
		CreatedAt:  now,
	}
	for _, override := range overrides {
		override(capsule)
	}
	return capsule
}

// BuildCircle returns a circle from a catalog template.
func (f *Factory) BuildCircle(tmpl CircleTemplate, createdBy string) *models.MoodCircle {
	return &models.MoodCircle{
		Name:        tmpl.Name,
		Description: tmpl.Description,
		Mood:        tmpl.Mood,
		CreatedBy:   createdBy,
	}
}

// Mood picks a random mood.
func (f *Factory) Mood() models.Mood {
	return models.Moods[f.faker.Number(0, len(models.Moods)-1)]
}

// VibeType picks one of the reactions the client offers.
func (f *Factory) VibeType() string {
	return f.faker.RandomString(validation.KnownVibeTypes)
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.faker.Float64Range(0, 1) < p
}

// Pick returns n distinct indexes below size, excluding skip.
func (f *Factory) Pick(size, n, skip int) []int {
	pool := make([]int, 0, size)
	for i := 0; i < size; i++ {
		if i != skip {
			pool = append(pool, i)
		}
	}
	f.faker.ShuffleInts(pool)
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

func (f *Factory) postContent(mood models.Mood) string {
	openers := moodOpeners[mood]
	return f.faker.RandomString(openers) + " " + f.faker.Sentence(f.faker.Number(6, 18))
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return f.now().UTC().Add(-back)
}
