// Package store persists synthesized profiles. Cached profiles go stale
// after seven days and stale or version-mismatched records read as misses,
// which forces a fresh synthesis instead of serving an outdated personality.
package store

import (
	"context"
	"time"

	"github.com/soulforge-ai/soulforge/pkg/profile"
	"github.com/soulforge-ai/soulforge/pkg/quirk"
)

const (
	// Freshness is how long a cached profile stays servable.
	Freshness = 7 * 24 * time.Hour

	// SchemaVersion invalidates cached records whose shape predates the
	// current profile schema.
	SchemaVersion = 2
)

// Record is one cached profile with its tuning and consciousness state.
type Record struct {
	Handle        string         `json:"handle"`
	Profile       profile.Profile `json:"profile"`
	Tuning        profile.Tuning  `json:"tuning"`
	Consciousness quirk.Config    `json:"consciousness"`

	// RevisionID is stamped on every Put.
	RevisionID string    `json:"revision_id"`
	Version    int       `json:"version"`
	CachedAt   time.Time `json:"cached_at"`
}

// Fresh reports whether the record is servable at time now.
func (r Record) Fresh(now time.Time) (fresh bool) {
	fresh = r.Version == SchemaVersion && now.Sub(r.CachedAt) < Freshness
	return fresh
}

// Store is the profile cache. Get treats stale and version-mismatched
// records as misses.
type Store interface {
	Get(ctx context.Context, handle string) (rec Record, ok bool, err error)
	Put(ctx context.Context, rec Record) (err error)
	Delete(ctx context.Context, handle string) (err error)
}
