package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder 把终局记录追加到 Redis Stream，一条记录一个 entry
type RedisRecorder struct {
	cli    *redis.Client
	stream string
}

func NewRedisRecorder(addr string, db int, stream string) *RedisRecorder {
	cli := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	return &RedisRecorder{cli: cli, stream: stream}
}

func (r *RedisRecorder) Record(ctx context.Context, rec *MatchRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.cli.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{"data": payload},
	}).Err()
}

func (r *RedisRecorder) Close() error { return r.cli.Close() }
