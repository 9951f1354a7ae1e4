package testutil

import (
	"context"
	"fmt"
	"testing"

	"go-gin-ticket-preview/config"
	"go-gin-ticket-preview/internal/database"

	"github.com/redis/go-redis/v9"
)

// SetupRedisOnly 初始化測試用 Redis (6380 / DB 1)，用於 stream 整合測試
func SetupRedisOnly() (*redis.Client, func(), error) {
	cfg := config.LoadTestConfig()
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %v", err)
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %v", err)
	}
	cleanup := func() { rdb.Close() }
	return rdb, cleanup, nil
}

// RequireRedis 連不上測試 Redis 時略過測試
func RequireRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb, cleanup, err := SetupRedisOnly()
	if err != nil {
		t.Skipf("test redis unavailable: %v", err)
	}
	t.Cleanup(cleanup)
	return rdb
}
