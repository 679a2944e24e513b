package cache

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis backs the sample cache with a shared Redis instance so that multiple
// API replicas reuse each other's fetches.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{rdb: redis.NewClient(opt)}, nil
}

func (r *Redis) Get(ctx context.Context, lat, lon float64) (float64, bool, error) {
	val, err := r.rdb.Get(ctx, Key(lat, lon)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	ghi, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, nil
	}
	return ghi, true, nil
}

func (r *Redis) Set(ctx context.Context, lat, lon, ghi float64, ttl time.Duration) error {
	return r.rdb.Set(ctx, Key(lat, lon), strconv.FormatFloat(ghi, 'f', -1, 64), ttl).Err()
}
