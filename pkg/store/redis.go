package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const redisKeyPrefix = "soulforge:profile:"

// Redis is the shared profile cache. Records additionally carry a Redis TTL
// matching the freshness window, so eviction happens server-side too.
type Redis struct {
	client *redis.Client

	now func() time.Time
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) (r *Redis) {
	r = &Redis{
		client: client,
		now:    time.Now,
	}
	return r
}

// Get fetches and validates the cached record for handle. A missing key,
// a schema version mismatch, or a stale timestamp all read as a miss.
func (r *Redis) Get(ctx context.Context, handle string) (rec Record, ok bool, err error) {
	raw, getErr := r.client.Get(ctx, redisKeyPrefix+handle).Result()
	if getErr != nil {
		if errors.Is(getErr, redis.Nil) {
			return rec, ok, err
		}
		err = errors.Wrapf(getErr, "fetching profile for %s", handle)
		return rec, ok, err
	}

	// Check the stamps before paying for a full unmarshal.
	if int(gjson.Get(raw, "version").Int()) != SchemaVersion {
		return rec, ok, err
	}

	if err = json.Unmarshal([]byte(raw), &rec); err != nil {
		err = errors.Wrapf(err, "decoding profile for %s", handle)
		return rec, ok, err
	}

	if !rec.Fresh(r.now()) {
		rec = Record{}
		return rec, ok, err
	}

	ok = true
	return rec, ok, err
}

// Put stamps and stores the record with a freshness-window TTL.
func (r *Redis) Put(ctx context.Context, rec Record) (err error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		err = errors.Wrapf(err, "encoding profile for %s", rec.Handle)
		return err
	}

	stamped := string(raw)
	for _, stamp := range []struct {
		path  string
		value interface{}
	}{
		{"revision_id", uuid.NewString()},
		{"version", SchemaVersion},
		{"cached_at", r.now().Format(time.RFC3339Nano)},
	} {
		stamped, err = sjson.Set(stamped, stamp.path, stamp.value)
		if err != nil {
			err = errors.Wrapf(err, "stamping %s", stamp.path)
			return err
		}
	}

	if err = r.client.Set(ctx, redisKeyPrefix+rec.Handle, stamped, Freshness).Err(); err != nil {
		err = errors.Wrapf(err, "storing profile for %s", rec.Handle)
	}
	return err
}

// Delete evicts a handle.
func (r *Redis) Delete(ctx context.Context, handle string) (err error) {
	if err = r.client.Del(ctx, redisKeyPrefix+handle).Err(); err != nil {
		err = errors.Wrapf(err, "deleting profile for %s", handle)
	}
	return err
}
