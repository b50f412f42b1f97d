package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a process-local store for single-node deployments and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record

	// now is injectable for freshness tests.
	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() (m *Memory) {
	m = &Memory{
		records: map[string]Record{},
		now:     time.Now,
	}
	return m
}

// Get returns the cached record for handle. Stale and version-mismatched
// records read as misses.
func (m *Memory) Get(ctx context.Context, handle string) (rec Record, ok bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok = m.records[handle]
	if ok && !rec.Fresh(m.now()) {
		rec = Record{}
		ok = false
	}
	return rec, ok, err
}

// Put stamps and stores the record.
func (m *Memory) Put(ctx context.Context, rec Record) (err error) {
	rec.RevisionID = uuid.NewString()
	rec.Version = SchemaVersion
	rec.CachedAt = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Handle] = rec
	return err
}

// Delete evicts a handle.
func (m *Memory) Delete(ctx context.Context, handle string) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, handle)
	return err
}
