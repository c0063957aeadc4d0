package models

import "time"

// Subscription is a directed follow edge between two users.
type Subscription struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SubscriberID   uint      `gorm:"not null;uniqueIndex:idx_subscription_pair" json:"subscriber_id"`
	SubscribedToID uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index" json:"subscribed_to_id"`
	Subscriber     User      `gorm:"foreignKey:SubscriberID" json:"subscriber,omitempty"`
	SubscribedTo   User      `gorm:"foreignKey:SubscribedToID" json:"subscribed_to,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserStats aggregates the counters shown on a profile page.
type UserStats struct {
	HighlightsCount    int64 `json:"highlights_count"`
	SubscribersCount   int64 `json:"subscribers_count"`
	SubscriptionsCount int64 `json:"subscriptions_count"`
	Score              int   `json:"score"`
}
