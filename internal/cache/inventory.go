package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix         = "user:%s"
	UserSyncKeyPrefix     = "user_sync:%s"
	GlobalMoodStatsPrefix = "mood_stats:global:%s"
	RegionMoodStatsPrefix = "mood_stats:region:%s"
	BlacklistKeyPrefix    = "blacklist:%s"
)

const (
	UserTTL      = 5 * time.Minute
	UserSyncTTL  = 10 * time.Minute
	MoodStatsTTL = 1 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// UserSyncKey marks a user whose row was recently upserted from token claims.
func UserSyncKey(userID string) string {
	return fmt.Sprintf(UserSyncKeyPrefix, userID)
}

// GlobalMoodStatsKey is keyed by the YYYY-MM-DD day the stats start from.
func GlobalMoodStatsKey(day string) string {
	return fmt.Sprintf(GlobalMoodStatsPrefix, day)
}

func RegionMoodStatsKey(country string) string {
	return fmt.Sprintf(RegionMoodStatsPrefix, country)
}

// BlacklistKey holds a revoked session token id.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	rdb.Del(ctx, keys...)
}

func InvalidateUser(ctx context.Context, rdb *redis.Client, userID string) {
	Invalidate(ctx, rdb, UserKey(userID))
}

// InvalidateMatching deletes every key matching pattern, walking the keyspace
// with SCAN so large instances are not blocked.
func InvalidateMatching(ctx context.Context, rdb *redis.Client, pattern string) error {
	if rdb == nil {
		return nil
	}
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return rdb.Del(ctx, keys...).Err()
	}
	return nil
}

// InvalidateMoodStats drops every cached global window, since each one
// includes today's counters, and the history of country.
func InvalidateMoodStats(ctx context.Context, rdb *redis.Client, country string) error {
	if rdb == nil {
		return nil
	}
	Invalidate(ctx, rdb, RegionMoodStatsKey(country))
	return InvalidateMatching(ctx, rdb, GlobalMoodStatsKey("*"))
}
