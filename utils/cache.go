// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"fitstudio/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// LockClient is the dedicated client for named scheduling locks.
	LockClient *redis.Client
)

// InitCache initializes the generic Redis cache client (using DB from AppConfig for general caching).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitLockClient initializes the Redis client backing named locks.
func InitLockClient() {
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := LockClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Locks): %v", err)
	}
}

// GetLockClient returns the Redis client backing named locks.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockClient()
	}
	return LockClient
}

// Cache key layout. Coach monthly reports and customer profiles are
// denormalized views invalidated on seat/ledger mutations; conflict
// checks never read them.
func CoachBriefKey(coachID string) string { return "brief:coach:" + coachID }

func CoachReportKey(coachID string, month string) string {
	return fmt.Sprintf("report:coach:%s:%s", coachID, month)
}

func CustomerProfileKey(customerID string) string { return "profile:customer:" + customerID }

// InvalidateCoachReport drops the cached monthly report for the month
// containing the given date (YYYYMMDD).
func InvalidateCoachReport(ctx context.Context, coachID string, date int) {
	month := fmt.Sprintf("%06d", date/100)
	if err := GetCacheClient().Del(ctx, CoachReportKey(coachID, month)).Err(); err != nil {
		GetLogger().Sugar().Warnf("cache: failed to invalidate coach report %s/%s: %v", coachID, month, err)
	}
}

// InvalidateCustomerProfile drops the cached customer profile.
func InvalidateCustomerProfile(ctx context.Context, customerID string) {
	if err := GetCacheClient().Del(ctx, CustomerProfileKey(customerID)).Err(); err != nil {
		GetLogger().Sugar().Warnf("cache: failed to invalidate customer profile %s: %v", customerID, err)
	}
}
