package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"blizz/internal/models"
	"blizz/internal/ranking"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
	hashed string
}

func newFactory(db *gorm.DB, opts Options, faker *gofakeit.Faker) *Factory {
	return &Factory{db: db, opts: opts, faker: faker, nextID: 1000}
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return DemoPassword
	}
	if f.hashed == "" {
		h, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		f.hashed = string(h)
	}
	return f.hashed
}

// CreateUser persists a user with a zero-score profile. n keeps usernames
// unique within one run.
func (f *Factory) CreateUser(ctx context.Context, n int) (*models.User, error) {
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), n)
	if len(username) > 30 {
		username = username[len(username)-30:]
	}
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: f.password(),
		Bio:      f.faker.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Profile:  &models.Profile{},
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildHighlight constructs a highlight for author without persisting it.
// The caption carries one to three tags from pool. Expired highlights are
// backdated past the visibility window.
func (f *Factory) BuildHighlight(author *models.User, pool []string, now time.Time, expired bool) *models.Highlight {
	caption := f.faker.Sentence(6)
	if len(pool) > 0 {
		for i := f.faker.Number(1, 3); i > 0; i-- {
			caption += " #" + f.faker.RandomString(pool)
		}
	}

	age := time.Duration(f.faker.Number(0, 47*60)) * time.Minute
	if expired {
		age = models.DefaultHighlightTTL + time.Duration(f.faker.Number(1, 48*60))*time.Minute
	}
	created := now.Add(-age)

	return &models.Highlight{
		AuthorID:  author.ID,
		VideoURL:  fmt.Sprintf("/media/highlights/seed-%s.mp4", f.faker.UUID()),
		Caption:   caption,
		Hashtags:  models.Hashtags(ranking.ExtractHashtags(caption)),
		IsActive:  true,
		CreatedAt: created,
		ExpiresAt: created.Add(models.DefaultHighlightTTL),
	}
}

// CreateHighlight persists h.
func (f *Factory) CreateHighlight(ctx context.Context, h *models.Highlight) error {
	if f.opts.DryRun {
		f.nextID++
		h.ID = f.nextID
		log.Printf("[dry-run] CreateHighlight: author=%d tags=%v", h.AuthorID, []string(h.Hashtags))
		return nil
	}
	return f.db.WithContext(ctx).Omit("Author").Create(h).Error
}

// CreateComment persists a short comment by user on h.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, h *models.Highlight) (*models.HighlightComment, error) {
	comment := &models.HighlightComment{
		HighlightID: h.ID,
		UserID:      user.ID,
		Content:     f.faker.Sentence(8),
	}
	if len(comment.Content) > models.MaxCommentLength {
		comment.Content = comment.Content[:models.MaxCommentLength]
	}
	if err := f.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
