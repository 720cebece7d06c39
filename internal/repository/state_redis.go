package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
)

const stateKeyPrefix = "reviewstate:"

// StateRedis persists each namespace blob under reviewstate:<namespace>.
type StateRedis struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewStateRedis(rdb *redis.Client, logger *zap.Logger) *StateRedis {
	return &StateRedis{rdb: rdb, logger: logger}
}

func (s *StateRedis) Load(ctx context.Context, namespace string) ([]byte, error) {
	start := time.Now()
	blob, err := s.rdb.Get(ctx, stateKeyPrefix+namespace).Bytes()
	metrics.RecordStateOpDuration("load", namespace, time.Since(start))

	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", namespace, err)
	}
	return blob, nil
}

func (s *StateRedis) Save(ctx context.Context, namespace string, blob []byte) error {
	start := time.Now()
	err := s.rdb.Set(ctx, stateKeyPrefix+namespace, blob, 0).Err()
	metrics.RecordStateOpDuration("save", namespace, time.Since(start))

	if err != nil {
		return fmt.Errorf("redis set %s: %w", namespace, err)
	}
	return nil
}
