package repository

import (
	"context"

	"blizz/internal/models"
	"blizz/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository manages follow edges between users.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, targetID uint) (bool, error)
	SubscribedIDs(ctx context.Context, userID uint) ([]uint, error)
	Subscriptions(ctx context.Context, userID uint) ([]models.User, error)
	Subscribers(ctx context.Context, userID uint) ([]models.User, error)
	CountSubscribers(ctx context.Context, userID uint) (int64, error)
	CountSubscriptions(ctx context.Context, userID uint) (int64, error)
}

type subscriptionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db, log: observability.NewRepoLogger("subscriptions")}
}

// Toggle removes the edge when it exists and creates it otherwise. It reports
// whether the subscriber follows the target afterwards.
func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, targetID uint) (bool, error) {
	var subscribed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, targetID).
			Delete(&models.Subscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			subscribed = false
			return nil
		}

		edge := models.Subscription{SubscriberID: subscriberID, SubscribedToID: targetID}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
			return err
		}
		subscribed = true
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle")
		return false, models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]any{
		"subscriber_id": subscriberID,
		"target_id":     targetID,
		"subscribed":    subscribed,
	})
	return subscribed, nil
}

func (r *subscriptionRepository) SubscribedIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ?", userID).
		Order("subscribed_to_id").
		Pluck("subscribed_to_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// Subscriptions lists the users userID follows, most recent first.
func (r *subscriptionRepository) Subscriptions(ctx context.Context, userID uint) ([]models.User, error) {
	return r.listUsers(ctx, "subscriptions.subscribed_to_id", "subscriptions.subscriber_id", userID)
}

// Subscribers lists the users following userID, most recent first.
func (r *subscriptionRepository) Subscribers(ctx context.Context, userID uint) ([]models.User, error) {
	return r.listUsers(ctx, "subscriptions.subscriber_id", "subscriptions.subscribed_to_id", userID)
}

func (r *subscriptionRepository) listUsers(ctx context.Context, joinCol, filterCol string, userID uint) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Joins("JOIN subscriptions ON users.id = "+joinCol).
		Where(filterCol+" = ?", userID).
		Order("subscriptions.created_at desc").
		Order("subscriptions.id desc").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *subscriptionRepository) CountSubscribers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "subscribed_to_id", userID)
}

func (r *subscriptionRepository) CountSubscriptions(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "subscriber_id", userID)
}

func (r *subscriptionRepository) count(ctx context.Context, col string, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where(col+" = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
