// Package main provides reputation profile utilities for the highlights service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"blizz/internal/config"
	"blizz/internal/database"
	"blizz/internal/models"
	"blizz/internal/repository"
	"blizz/internal/service"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/profiles init           - Create missing zero-score profiles")
		fmt.Println("  go run ./cmd/profiles show <user_id> - Show a user's score and counters")
		fmt.Println("  go run ./cmd/profiles top [n]        - List the n highest scores (default 10)")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "init":
		initProfiles(ctx, db)

	case "show":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/profiles show <user_id>")
			os.Exit(1)
		}
		showProfile(ctx, db, os.Args[2])

	case "top":
		n := 10
		if len(os.Args) >= 3 {
			if n, err = strconv.Atoi(os.Args[2]); err != nil || n <= 0 {
				fmt.Printf("Invalid count: %s\n", os.Args[2])
				os.Exit(1)
			}
		}
		topScores(ctx, db, n)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func initProfiles(ctx context.Context, db *gorm.DB) {
	users := service.NewUserService(repository.NewUserRepository(db))
	created, err := users.InitProfiles(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize profiles: %v", err)
	}
	fmt.Printf("✅ Created %d profiles\n", created)
}

func showProfile(ctx context.Context, db *gorm.DB, rawID string) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		fmt.Printf("Invalid user ID: %s\n", rawID)
		os.Exit(1)
	}

	subs := service.NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		repository.NewHighlightRepository(db),
		nil, nil,
	)
	stats, err := subs.Stats(ctx, uint(id))
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			fmt.Printf("User with ID %d not found\n", id)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	fmt.Printf("User %d | score: %d | highlights: %d | subscribers: %d | subscriptions: %d\n",
		id, stats.Score, stats.HighlightsCount, stats.SubscribersCount, stats.SubscriptionsCount)
}

func topScores(ctx context.Context, db *gorm.DB, n int) {
	var rows []struct {
		UserID   uint
		Username string
		Score    int
	}
	err := db.WithContext(ctx).
		Table("profiles").
		Select("profiles.user_id, users.username, profiles.score").
		Joins("JOIN users ON users.id = profiles.user_id AND users.deleted_at IS NULL").
		Order("profiles.score DESC, profiles.user_id ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		log.Fatalf("Failed to fetch scores: %v", err)
	}

	if len(rows) == 0 {
		fmt.Println("No profiles found")
		return
	}

	fmt.Println("\n🏆 Top scores:")
	fmt.Println("─────────────────────────────────────")
	for i, r := range rows {
		fmt.Printf("%2d. %-24s %6d (ID: %d)\n", i+1, r.Username, r.Score, r.UserID)
	}
	fmt.Println("─────────────────────────────────────")
}
