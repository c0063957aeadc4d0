package service

import (
	"context"

	"blizz/internal/events"
	"blizz/internal/models"
	"blizz/internal/repository"
)

// SubscriptionService manages who follows whom.
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	highlights    repository.HighlightRepository
	dispatch      dispatcher
}

// SubscriptionResult is the state after a toggle.
type SubscriptionResult struct {
	Subscribed       bool  `json:"subscribed"`
	SubscribersCount int64 `json:"subscribers_count"`
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	users repository.UserRepository,
	highlights repository.HighlightRepository,
	publisher events.Publisher,
	notifier UserNotifier,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		users:         users,
		highlights:    highlights,
		dispatch:      newDispatcher(publisher, notifier),
	}
}

// Toggle follows targetID when subscriberID does not yet, and unfollows
// otherwise.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, targetID uint) (*SubscriptionResult, error) {
	if subscriberID == targetID {
		return nil, models.NewValidationError("You cannot subscribe to yourself")
	}
	ok, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("User", targetID)
	}

	subscribed, err := s.subscriptions.Toggle(ctx, subscriberID, targetID)
	if err != nil {
		return nil, err
	}
	count, err := s.subscriptions.CountSubscribers(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if subscribed {
		s.dispatch.emit(ctx, events.Event{
			Type:     events.TypeUserSubscribed,
			ActorID:  subscriberID,
			TargetID: targetID,
		}, targetID)
	}
	return &SubscriptionResult{Subscribed: subscribed, SubscribersCount: count}, nil
}

func (s *SubscriptionService) Subscriptions(ctx context.Context, userID uint) ([]models.AuthorSummary, error) {
	users, err := s.subscriptions.Subscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, userID uint) ([]models.AuthorSummary, error) {
	users, err := s.subscriptions.Subscribers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}

// SubscribedIDs lists the authors userID follows.
func (s *SubscriptionService) SubscribedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.subscriptions.SubscribedIDs(ctx, userID)
}

// Stats gathers the profile counters of userID.
func (s *SubscriptionService) Stats(ctx context.Context, userID uint) (*models.UserStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &models.UserStats{Score: user.Summary().Score}
	if stats.HighlightsCount, err = s.highlights.CountByAuthor(ctx, userID); err != nil {
		return nil, err
	}
	if stats.SubscribersCount, err = s.subscriptions.CountSubscribers(ctx, userID); err != nil {
		return nil, err
	}
	if stats.SubscriptionsCount, err = s.subscriptions.CountSubscriptions(ctx, userID); err != nil {
		return nil, err
	}
	return stats, nil
}

func summaries(users []models.User) []models.AuthorSummary {
	out := make([]models.AuthorSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}
