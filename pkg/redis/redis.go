package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nvaghela/dukaan-backend/config"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
)

// ErrNotInitialized is returned by the helpers when Init never succeeded.
// The server tolerates a missing redis; callers treat this as a cache miss
// or skip the operation.
var ErrNotInitialized = errors.New("redis client is not initialized")

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// BlacklistToken adds a token to the blacklist
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		return ErrNotInitialized
	}

	key := fmt.Sprintf("blacklist:%s", token)
	if err := client.Set(ctx, key, "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}

	key := fmt.Sprintf("blacklist:%s", token)
	val, err := client.Get(ctx, key).Result()

	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}

	return val == "revoked", nil
}

// CacheVerified caches a seller's kyc_verified projection. The database row
// stays authoritative; the cache only saves a lookup on the hot selling path.
func CacheVerified(ctx context.Context, sellerID uint, verified bool) error {
	if client == nil {
		return ErrNotInitialized
	}

	key := fmt.Sprintf("kyc:verified:%d", sellerID)
	val := "0"
	if verified {
		val = "1"
	}
	if err := client.Set(ctx, key, val, 24*time.Hour).Err(); err != nil {
		logger.Error("Failed to cache verified flag", err, map[string]interface{}{
			"seller_id": sellerID,
		})
		return err
	}
	return nil
}

// GetCachedVerified returns the cached kyc_verified flag for a seller. The
// second return value reports whether the cache held an entry.
func GetCachedVerified(ctx context.Context, sellerID uint) (bool, bool, error) {
	if client == nil {
		return false, false, ErrNotInitialized
	}

	key := fmt.Sprintf("kyc:verified:%d", sellerID)
	val, err := client.Get(ctx, key).Result()

	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}

	return val == "1", true, nil
}
