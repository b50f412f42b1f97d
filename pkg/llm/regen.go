package llm

import "sync"

// RegenEntry tracks repeated generation attempts under one regeneration key.
type RegenEntry struct {
	Attempts          int
	PreviousResponses []string
	StyleVariation    int
}

// RegenerationContext scopes style variation and previous-response tracking
// across repeated generation attempts. It is owned by the caller and injected
// into the engine; all access is mutex-guarded.
type RegenerationContext struct {
	mu      sync.Mutex
	entries map[string]*RegenEntry

	// maxPrevious bounds per-key response history.
	maxPrevious int
}

// NewRegenerationContext creates an empty regeneration context.
func NewRegenerationContext() (rc *RegenerationContext) {
	rc = &RegenerationContext{
		entries:     map[string]*RegenEntry{},
		maxPrevious: 10,
	}
	return rc
}

// Snapshot returns a copy of the entry for key, zero-valued if absent.
func (rc *RegenerationContext) Snapshot(key string) (entry RegenEntry) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if e, ok := rc.entries[key]; ok {
		entry = RegenEntry{
			Attempts:       e.Attempts,
			StyleVariation: e.StyleVariation,
		}
		entry.PreviousResponses = append(entry.PreviousResponses, e.PreviousResponses...)
	}
	return entry
}

// RecordAttempt bumps the attempt counter and rotates the style variation.
func (rc *RegenerationContext) RecordAttempt(key string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	e := rc.entry(key)
	e.Attempts++
	e.StyleVariation = e.Attempts
}

// RecordResponse remembers an accepted response for similarity scoring of
// later attempts.
func (rc *RegenerationContext) RecordResponse(key, response string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	e := rc.entry(key)
	e.PreviousResponses = append(e.PreviousResponses, response)
	if len(e.PreviousResponses) > rc.maxPrevious {
		e.PreviousResponses = e.PreviousResponses[len(e.PreviousResponses)-rc.maxPrevious:]
	}
}

// Forget drops a key. The map otherwise grows for the process lifetime,
// matching caller-managed teardown.
func (rc *RegenerationContext) Forget(key string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	delete(rc.entries, key)
}

func (rc *RegenerationContext) entry(key string) (e *RegenEntry) {
	e, ok := rc.entries[key]
	if !ok {
		e = &RegenEntry{}
		rc.entries[key] = e
	}
	return e
}
