package seed

import (
	"context"
	"fmt"
	"log/slog"

	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/repository"

	"gorm.io/gorm"
)

// Options configure a Seeder.
type Options struct {
	// RandSeed makes runs reproducible. Zero picks a random seed.
	RandSeed int64
	// DryRun builds entities without writing them.
	DryRun bool
}

// Summary counts what a run wrote.
type Summary struct {
	Users    int
	Posts    int
	Capsules int
	Circles  int
	Members  int
	Vibes    int
}

// Seeder writes demo data through the repository layer so that the aura
// ledger, user totals and mood stats stay consistent.
type Seeder struct {
	db      *gorm.DB
	store   repository.Store
	catalog *Catalog
	opts    Options
}

// NewSeeder creates a seeder backed by db using the catalog compiled into
// the binary.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return NewSeederWithCatalog(db, catalog, opts), nil
}

func NewSeederWithCatalog(db *gorm.DB, catalog *Catalog, opts Options) *Seeder {
	return &Seeder{db: db, store: repository.NewStore(db), catalog: catalog, opts: opts}
}

// Catalog returns the catalog the seeder draws from.
func (s *Seeder) Catalog() *Catalog {
	return s.catalog
}

// clearOrder deletes children before parents.
var clearOrder = []interface{}{
	&models.Vibe{},
	&models.CircleMember{},
	&models.MoodCircle{},
	&models.AuraActivity{},
	&models.TimeCapsule{},
	&models.GlobalMoodStat{},
	&models.Post{},
	&models.User{},
}

// ClearAll removes every domain row.
func (s *Seeder) ClearAll(ctx context.Context) error {
	if s.opts.DryRun {
		middleware.Logger.InfoContext(ctx, "[dry-run] skipping clear")
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range clearOrder {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Circles makes sure every built-in circle exists, owned by the system user.
// It is safe to run on every start.
func (s *Seeder) Circles(ctx context.Context) ([]models.MoodCircle, error) {
	if s.opts.DryRun {
		f := NewFactory(s.opts.RandSeed, 0)
		circles := make([]models.MoodCircle, 0, len(s.catalog.Circles))
		for _, tmpl := range s.catalog.Circles {
			circles = append(circles, *f.BuildCircle(tmpl, SystemUserID))
		}
		return circles, nil
	}

	existing, err := s.systemCircles(ctx)
	if err != nil {
		return nil, err
	}

	var circles []models.MoodCircle
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		system := &models.User{ID: SystemUserID, FirstName: "Aura", DisplayName: "Aura", TreeType: "oak", TreeLevel: 1}
		if err := tx.Users().Upsert(ctx, system); err != nil {
			return fmt.Errorf("upsert system user: %w", err)
		}

		f := NewFactory(s.opts.RandSeed, 0)
		for _, tmpl := range s.catalog.Circles {
			if circle, ok := existing[tmpl.Name]; ok {
				circles = append(circles, circle)
				continue
			}
			circle := f.BuildCircle(tmpl, SystemUserID)
			if err := tx.Circles().Create(ctx, circle); err != nil {
				return fmt.Errorf("create circle %q: %w", tmpl.Name, err)
			}
			circles = append(circles, *circle)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return circles, nil
}

func (s *Seeder) systemCircles(ctx context.Context) (map[string]models.MoodCircle, error) {
	var found []models.MoodCircle
	if err := s.db.WithContext(ctx).Where("created_by = ?", SystemUserID).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("load built-in circles: %w", err)
	}
	byName := make(map[string]models.MoodCircle, len(found))
	for _, c := range found {
		byName[c.Name] = c
	}
	return byName, nil
}

// Apply seeds users, posts, capsules, vibes and circle memberships sized by
// preset. Points are awarded the same way the API awards them.
func (s *Seeder) Apply(ctx context.Context, preset Preset) (*Summary, error) {
	f := NewFactory(s.opts.RandSeed, preset.MaxDays)
	summary := &Summary{}

	middleware.Logger.InfoContext(ctx, "seeding",
		slog.String("preset", preset.Name),
		slog.Int("users", preset.Users),
		slog.Bool("dry_run", s.opts.DryRun),
	)

	circles, err := s.Circles(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed circles: %w", err)
	}
	summary.Circles = len(circles)

	users := make([]*models.User, 0, preset.Users)
	for i := 0; i < preset.Users; i++ {
		u := f.BuildUser()
		if err := s.write(ctx, func(tx repository.Store) error { return tx.Users().Upsert(ctx, u) }); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	summary.Users = len(users)

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < preset.PostsPerUser; i++ {
			p := f.BuildPost(u, f.Chance(preset.AnonymousRatio))
			err := s.write(ctx, func(tx repository.Store) error {
				if err := tx.Posts().Create(ctx, p); err != nil {
					return err
				}
				if err := s.award(ctx, tx, u.ID, models.ActivitySharedExperience, models.PointsSharedExperience, "Shared a new experience"); err != nil {
					return err
				}
				if p.Location != "" {
					return tx.MoodStats().Record(ctx, p.Mood, p.Location, p.CreatedAt)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, p)
		}

		for i := 0; i < preset.CapsulesPerUser; i++ {
			c := f.BuildCapsule(u)
			err := s.write(ctx, func(tx repository.Store) error {
				if err := tx.Capsules().Create(ctx, c); err != nil {
					return err
				}
				return s.award(ctx, tx, u.ID, models.ActivityTimeCapsule, models.PointsTimeCapsule, "Created a time capsule")
			})
			if err != nil {
				return nil, fmt.Errorf("create capsule: %w", err)
			}
			summary.Capsules++
		}
	}
	summary.Posts = len(posts)

	for _, p := range posts {
		author := indexOfUser(users, p.UserID)
		for _, i := range f.Pick(len(users), preset.VibesPerPost, author) {
			fan := users[i]
			vibeType := f.VibeType()
			err := s.write(ctx, func(tx repository.Store) error {
				if err := tx.Vibes().Create(ctx, &models.Vibe{PostID: p.ID, UserID: fan.ID, Type: vibeType}); err != nil {
					return err
				}
				return s.award(ctx, tx, fan.ID, models.ActivitySupportiveGesture, models.PointsSupportiveGesture, "Sent "+vibeType+" vibe")
			})
			if err != nil {
				return nil, fmt.Errorf("create vibe: %w", err)
			}
			summary.Vibes++
		}
	}

	for _, u := range users {
		for _, i := range f.Pick(len(circles), preset.CircleJoins, -1) {
			circleID := circles[i].ID
			err := s.write(ctx, func(tx repository.Store) error {
				if err := tx.Circles().AddMember(ctx, circleID, u.ID); err != nil {
					return err
				}
				_, err := tx.Circles().RecountMembers(ctx, circleID)
				return err
			})
			if err != nil {
				return nil, fmt.Errorf("join circle: %w", err)
			}
			summary.Members++
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("capsules", summary.Capsules),
		slog.Int("vibes", summary.Vibes),
		slog.Int("circle_members", summary.Members),
	)
	return summary, nil
}

func (s *Seeder) write(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.opts.DryRun {
		return nil
	}
	return s.store.Transaction(ctx, fn)
}

func (s *Seeder) award(ctx context.Context, tx repository.Store, userID string, kind models.ActivityType, points int, description string) error {
	return tx.Aura().Append(ctx, &models.AuraActivity{
		UserID:      userID,
		Type:        kind,
		Points:      points,
		Description: description,
	})
}

func indexOfUser(users []*models.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
