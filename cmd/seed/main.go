// Command main fills the database with demo data for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"aura/internal/config"
	"aura/internal/database"
	"aura/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run() error {
	presetName := flag.String("preset", "small", "seeding preset from the catalog")
	catalogPath := flag.String("catalog", "", "optional preset file replacing the built-in catalog")
	shouldClean := flag.Bool("clean", false, "remove existing data before seeding")
	circlesOnly := flag.Bool("circles-only", false, "only ensure the built-in mood circles")
	randSeed := flag.Int64("seed", 0, "random seed for reproducible data (0 = random)")
	dryRun := flag.Bool("dry-run", false, "build data without writing it")
	flag.Parse()

	catalog, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.IsProduction() && !*dryRun {
		return fmt.Errorf("refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return err
	}

	s := seed.NewSeederWithCatalog(db, catalog, seed.Options{RandSeed: *randSeed, DryRun: *dryRun})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		log.Println("🗑️  Existing data cleared")
	}

	if *circlesOnly {
		circles, err := s.Circles(ctx)
		if err != nil {
			return err
		}
		log.Printf("✓ %d built-in mood circles available", len(circles))
		return nil
	}

	preset, err := catalog.Preset(*presetName)
	if err != nil {
		return err
	}
	summary, err := s.Apply(ctx, preset)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Printf("✨ Seeded %d users, %d posts, %d capsules, %d vibes and %d circle memberships",
		summary.Users, summary.Posts, summary.Capsules, summary.Vibes, summary.Members)
	return nil
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return seed.ParseCatalog(raw)
}
