// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"blizz/internal/models"
	"blizz/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	// DryRun builds entities with synthetic IDs and writes nothing.
	DryRun bool
	// SkipBcrypt stores the plain demo password. Development only.
	SkipBcrypt bool
	// RandSeed makes a run reproducible. Zero picks a random seed.
	RandSeed int64
}

// Summary counts what one run created.
type Summary struct {
	Users         int
	Highlights    int
	Expired       int
	Subscriptions int
	Appreciations int
	Comments      int
	Views         int
}

// Seeder fills the database with demo highlights and engagement. Reactions go
// through the appreciation repository so author scores match the rows.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	faker   *gofakeit.Faker
	factory *Factory

	subscriptions repository.SubscriptionRepository
	appreciations repository.AppreciationRepository
	views         repository.ViewRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	faker := gofakeit.New(opts.RandSeed)
	s := &Seeder{
		db:      db,
		opts:    opts,
		faker:   faker,
		factory: newFactory(db, opts, faker),
	}
	if db != nil {
		s.subscriptions = repository.NewSubscriptionRepository(db)
		s.appreciations = repository.NewAppreciationRepository(db)
		s.views = repository.NewViewRepository(db)
	}
	return s
}

// seededTables lists every table the seeder writes, children first.
var seededTables = []string{
	"appreciations",
	"highlight_views",
	"highlight_shares",
	"highlight_comments",
	"highlights",
	"subscriptions",
	"profiles",
	"users",
}

// ClearAll removes all seeded data.
func (s *Seeder) ClearAll(ctx context.Context) error {
	if s.opts.DryRun {
		log.Println("[dry-run] ClearAll skipped")
		return nil
	}
	log.Println("🗑️  Clearing existing data...")

	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		sql := "TRUNCATE TABLE "
		for i, table := range seededTables {
			if i > 0 {
				sql += ", "
			}
			sql += table
		}
		return db.Exec(sql + " RESTART IDENTITY CASCADE").Error
	}
	for _, table := range seededTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds the data described by p.
func (s *Seeder) Run(ctx context.Context, p Preset) (Summary, error) {
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}
	log.Printf("🌱 Seeding preset %q: %d users, %d highlights each", p.Name, p.Users, p.HighlightsPerUser)

	var sum Summary
	now := time.Now()

	users := make([]*models.User, 0, p.Users)
	for i := 0; i < p.Users; i++ {
		u, err := s.factory.CreateUser(ctx, i)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	var visible []*models.Highlight
	for _, u := range users {
		for j := 0; j < p.HighlightsPerUser; j++ {
			expired := s.faker.Float64Range(0, 1) < p.ExpiredRatio
			h := s.factory.BuildHighlight(u, p.Hashtags, now, expired)
			if err := s.factory.CreateHighlight(ctx, h); err != nil {
				return sum, fmt.Errorf("create highlight: %w", err)
			}
			sum.Highlights++
			if expired {
				sum.Expired++
			} else {
				visible = append(visible, h)
			}
		}
	}
	log.Printf("✓ %d highlights created (%d expired)", sum.Highlights, sum.Expired)

	if s.opts.DryRun {
		log.Println("[dry-run] engagement skipped")
		return sum, nil
	}

	for _, a := range users {
		for _, b := range users {
			if a.ID == b.ID || !s.chance(p.SubscriptionRate) {
				continue
			}
			if _, err := s.subscriptions.Toggle(ctx, a.ID, b.ID); err != nil {
				return sum, fmt.Errorf("subscribe: %w", err)
			}
			sum.Subscriptions++
		}
	}
	log.Printf("✓ %d subscriptions created", sum.Subscriptions)

	for _, h := range visible {
		for _, u := range users {
			if u.ID == h.AuthorID {
				continue
			}
			if s.chance(p.ViewRate) {
				uid := u.ID
				view := &models.HighlightView{
					HighlightID:  h.ID,
					UserID:       &uid,
					ViewDuration: s.faker.Float64Range(1, 30),
				}
				if err := s.views.Upsert(ctx, view); err != nil {
					return sum, fmt.Errorf("record view: %w", err)
				}
				sum.Views++
			}
			if s.chance(p.AppreciationRate) {
				level := models.AppreciationLevel(s.faker.Number(int(models.MinLevel), int(models.MaxLevel)))
				if _, err := s.appreciations.Apply(ctx, h.ID, u.ID, level); err != nil {
					return sum, fmt.Errorf("appreciate: %w", err)
				}
				sum.Appreciations++
			}
			if s.chance(p.CommentRate) {
				if _, err := s.factory.CreateComment(ctx, u, h); err != nil {
					return sum, fmt.Errorf("comment: %w", err)
				}
				sum.Comments++
			}
		}
	}
	log.Printf("✓ %d views, %d appreciations, %d comments", sum.Views, sum.Appreciations, sum.Comments)

	log.Println("🎉 Database seeding completed successfully!")
	return sum, nil
}

func (s *Seeder) chance(rate float64) bool {
	return rate > 0 && s.faker.Float64Range(0, 1) < rate
}
