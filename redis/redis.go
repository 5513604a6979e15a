package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geojot/geojot/journal"
)

// Redis provides caching in Redis.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
	}, nil
}

const (
	recordPrefix = "records"
	memoryPrefix = "memories:last"
	maxSize      = 10
)

// ListRecords returns the cached records sorted by creation time in
// descending order.
func (r *Redis) ListRecords(ctx context.Context) ([]journal.Record, error) {
	vals, err := r.cli.ZRevRangeByScore(ctx, recordPrefix, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", time.Now().UnixNano()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange: %w", err)
	}

	out := make([]journal.Record, len(vals))
	for i, key := range vals {
		var rec record
		err = r.cli.HGetAll(ctx, key).Scan(&rec)
		if err != nil {
			return nil, fmt.Errorf("hgetall: %w", err)
		}

		comments, err := r.listComments(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}

		rec.Comments = comments
		out[i] = rec.APIRecord()
	}

	return out, nil
}

// InsertRecord adds the record to Redis with records:RECORD_ID as the key
// and adds the key to a sorted set scored by creation time.
func (r *Redis) InsertRecord(ctx context.Context, rec journal.Record) error {
	m := newCacheRecord(rec)

	err := r.cli.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			key := fmt.Sprintf("%s:%s", recordPrefix, m.ID)
			pipe.HSet(ctx, key, m)
			pipe.ZAdd(ctx, recordPrefix, redis.Z{
				Score:  recordScore(rec),
				Member: key,
			})

			return nil
		})
		return err
	}, m.ID)

	if err != nil {
		return fmt.Errorf("redis insert record: %w", err)
	}

	// Simulate an eviction strategy by removing the oldest key in case the max cache size is exceeded.
	if err := r.evictOldest(ctx); err != nil {
		return fmt.Errorf("evict oldest: %w", err)
	}
	return nil
}

// InsertComment appends a comment to the cached record identified by
// recordID. Caching a comment for a record that was evicted is harmless;
// its comment set is dropped alongside the record key.
func (r *Redis) InsertComment(ctx context.Context, recordID string, c journal.Comment) error {
	cached := &comment{
		ID:          c.ID,
		RecordID:    c.RecordID,
		UserID:      c.UserID,
		UserName:    c.UserName,
		Content:     c.Content,
		CommentDate: c.CreatedAt,
	}

	err := r.cli.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			keyPrefix := fmt.Sprintf("%s:%s:comments", recordPrefix, recordID)
			key := fmt.Sprintf("%s:%s", keyPrefix, c.ID)
			pipe.HSet(ctx, key, cached)

			pipe.ZAdd(ctx, keyPrefix, redis.Z{
				Score:  float64(time.Now().UnixNano()),
				Member: key,
			})
			return nil
		})

		return err
	}, c.ID)

	if err != nil {
		return fmt.Errorf("could not insert comment: %w", err)
	}

	return nil
}

// UpdateLikes rewrites the like counter on the cached record hash. Records
// that are not cached (or already evicted) are left alone so no partial
// hash is created outside the sorted set.
func (r *Redis) UpdateLikes(ctx context.Context, recordID string, likes int) error {
	key := fmt.Sprintf("%s:%s", recordPrefix, recordID)
	n, err := r.cli.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if n == 0 {
		return nil
	}
	if err := r.cli.HSet(ctx, key, "likes", likes).Err(); err != nil {
		return fmt.Errorf("set likes: %w", err)
	}
	return nil
}

// LastMemoryCount returns the number of memories last surfaced to the user,
// zero when the user has never been alerted.
func (r *Redis) LastMemoryCount(ctx context.Context, userID string) (int, error) {
	n, err := r.cli.Get(ctx, fmt.Sprintf("%s:%s", memoryPrefix, userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get memory count: %w", err)
	}
	return n, nil
}

// SetLastMemoryCount stores the size of the memory set that was just
// surfaced, so the alert only re-fires when the set changes.
func (r *Redis) SetLastMemoryCount(ctx context.Context, userID string, count int) error {
	err := r.cli.Set(ctx, fmt.Sprintf("%s:%s", memoryPrefix, userID), count, 0).Err()
	if err != nil {
		return fmt.Errorf("set memory count: %w", err)
	}
	return nil
}

// listComments fetches all cached comments associated with a record ID.
func (r *Redis) listComments(ctx context.Context, recordID string) ([]comment, error) {
	key := fmt.Sprintf("%s:%s:comments", recordPrefix, recordID)
	vals, err := r.cli.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", time.Now().UnixNano()),
	}).Result()

	if err != nil {
		return nil, fmt.Errorf("zrange: %w", err)
	}
	out := make([]comment, len(vals))
	for i, key := range vals {
		var c comment
		if err := r.cli.HGetAll(ctx, key).Scan(&c); err != nil {
			return nil, fmt.Errorf("hgetall: %w", err)
		}

		out[i] = c
	}

	return out, nil
}

func (r *Redis) evictOldest(ctx context.Context) error {
	vals, err := r.cli.ZRange(ctx, recordPrefix, 0, int64(-maxSize-1)).Result()
	if err != nil {
		return fmt.Errorf("zrevrange: %w", err)
	}

	for _, key := range vals {
		// Drop the comment hashes before their index set so nothing leaks.
		commentsKey := fmt.Sprintf("%s:comments", key)
		if comments, err := r.cli.ZRange(ctx, commentsKey, 0, -1).Result(); err == nil {
			for _, ckey := range comments {
				_ = r.cli.Del(ctx, ckey).Err()
			}
		}
		_ = r.cli.ZRem(ctx, recordPrefix, key).Err()
		_ = r.cli.Del(ctx, key).Err()
		_ = r.cli.Del(ctx, commentsKey).Err()
	}

	return nil
}

// recordScore orders cached records by their calendar date plus time of
// day. Records with unparseable dates sink to the bottom of the set.
func recordScore(rec journal.Record) float64 {
	layout := journal.DateLayout
	stamp := rec.CreatedAt
	if rec.Time != "" {
		layout += " 15:04"
		stamp += " " + rec.Time
	}
	t, err := time.Parse(layout, stamp)
	if err != nil {
		return 0
	}
	return float64(t.UnixNano())
}
