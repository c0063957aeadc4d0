package repository

import (
	"context"
	"errors"

	"blizz/internal/cache"
	"blizz/internal/models"
	"blizz/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and their profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	EnsureProfiles(ctx context.Context) (int64, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error
		return notFoundOr(err, "User", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns nil without error when no user has email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByUsername returns nil without error when no user has username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Create inserts the user together with a zero-score profile.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.Profile == nil {
		user.Profile = &models.Profile{}
	}
	user.Profile.Score = 0

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewValidationError("User already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

// Update saves editable user fields. Profile scores are not touched here.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{"bio": user.Bio, "avatar": user.Avatar}).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// EnsureProfiles creates a zero-score profile for every user lacking one and
// returns how many were created.
func (r *userRepository) EnsureProfiles(ctx context.Context) (int64, error) {
	var missing []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("NOT EXISTS (SELECT 1 FROM profiles WHERE profiles.user_id = users.id)").
		Order("id").
		Pluck("id", &missing).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	profiles := make([]models.Profile, 0, len(missing))
	for _, id := range missing {
		profiles = append(profiles, models.Profile{UserID: id})
	}
	if err := r.db.WithContext(ctx).CreateInBatches(profiles, 100).Error; err != nil {
		r.log.LogError(ctx, err, "ensure_profiles")
		return 0, models.NewInternalError(err)
	}
	for _, id := range missing {
		cache.InvalidateUser(ctx, id)
	}
	r.log.LogCreate(ctx, map[string]any{"profiles": len(missing)})
	return int64(len(missing)), nil
}
