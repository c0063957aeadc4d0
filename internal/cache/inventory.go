package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	TrendingKeyPrefix = "highlights:trending:%d:%d"
)

const (
	UserTTL = 5 * time.Minute
	// TrendingTTL is the default; the service may be configured otherwise.
	TrendingTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// TrendingKey identifies one (window, limit) trending result.
func TrendingKey(windowHours, limit int) string {
	return fmt.Sprintf(TrendingKeyPrefix, windowHours, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
