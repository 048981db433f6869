// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"bookline/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient backs the conversation session store.
	SessionCacheClient *redis.Client
	// GuardCacheClient backs away-mode notice throttling.
	GuardCacheClient *redis.Client
)

// InitSessionCache initializes the Redis client for conversation sessions.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := SessionCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Session): %v", err)
	}
}

// GetSessionCacheClient returns the session cache client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitGuardCache initializes the Redis client for guard throttling keys.
func InitGuardCache() {
	GuardCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisGuardDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := GuardCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Guard): %v", err)
	}
}

// GetGuardCacheClient returns the guard cache client.
func GetGuardCacheClient() *redis.Client {
	if GuardCacheClient == nil {
		InitGuardCache()
	}
	return GuardCacheClient
}
