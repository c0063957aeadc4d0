// Command main runs the database seeder for the highlights service.
package main

import (
	"context"
	"flag"
	"log"

	"blizz/internal/config"
	"blizz/internal/database"
	"blizz/internal/seed"
)

func main() {
	presetName := flag.String("preset", "default", "Built-in preset: small, default or busy")
	presetFile := flag.String("preset-file", "", "YAML preset file (overrides -preset)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing to the database")
	fast := flag.Bool("fast", false, "Skip bcrypt for seeded passwords (development only)")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible runs (0 = random)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	var (
		p   seed.Preset
		err error
	)
	if *presetFile != "" {
		p, err = seed.LoadPresetFile(*presetFile)
	} else {
		p, err = seed.LookupPreset(*presetName)
	}
	if err != nil {
		log.Fatalf("❌ Invalid preset: %v", err)
	}

	opts := seed.Options{DryRun: *dryRun, SkipBcrypt: *fast, RandSeed: *randSeed}
	ctx := context.Background()

	var s *seed.Seeder
	if *dryRun {
		s = seed.NewSeeder(nil, opts)
	} else {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		s = seed.NewSeeder(db, opts)

		if *shouldClean {
			if err := s.ClearAll(ctx); err != nil {
				log.Fatalf("❌ Cleanup failed: %v", err)
			}
		}
	}

	sum, err := s.Run(ctx, p)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! users=%d highlights=%d subscriptions=%d appreciations=%d views=%d comments=%d",
		sum.Users, sum.Highlights, sum.Subscriptions, sum.Appreciations, sum.Views, sum.Comments)
	log.Printf("📧 All test users have the password: %s", seed.DemoPassword)
}
