// Package corpus ingests raw social posts and prepares them for synthesis:
// filtering, fixed-size batching, and direct vocabulary statistics.
package corpus

import (
	"strings"
	"time"
)

// EngagementCounters are pass-through metrics from the post source.
type EngagementCounters struct {
	Likes   int `json:"likes"`
	Replies int `json:"replies"`
	Reposts int `json:"reposts"`
	Quotes  int `json:"quotes"`
}

// Post is a single raw social post. Immutable once ingested.
type Post struct {
	ID        string             `json:"id"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
	IsRetweet bool               `json:"is_retweet,omitempty"`
	IsReply   bool               `json:"is_reply,omitempty"`
	Counters  EngagementCounters `json:"engagement_counters"`
}

// Options controls preprocessing.
type Options struct {
	// MinWords drops posts with fewer words. Default 5.
	MinWords int
	// BatchSize is posts per batch. Default 50.
	BatchSize int
	// StyleMode additionally drops retweets, replies, and posts over 280
	// characters, keeping only text representative of the author's own voice.
	StyleMode bool
}

const (
	defaultMinWords  = 5
	defaultBatchSize = 50
	maxStylePostLen  = 280
)

func (o Options) withDefaults() (opts Options) {
	opts = o
	if opts.MinWords <= 0 {
		opts.MinWords = defaultMinWords
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return opts
}

// Preprocess filters and batches posts. Empty input yields zero batches, not
// an error; downstream turns that into an empty (fully-defaulted) profile.
func Preprocess(posts []Post, o Options) (batches [][]Post) {
	opts := o.withDefaults()

	kept := make([]Post, 0, len(posts))
	for _, p := range posts {
		if len(strings.Fields(p.Text)) < opts.MinWords {
			continue
		}
		if opts.StyleMode {
			if p.IsRetweet || p.IsReply {
				continue
			}
			if len([]rune(p.Text)) > maxStylePostLen {
				continue
			}
		}
		kept = append(kept, p)
	}

	for start := 0; start < len(kept); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(kept) {
			end = len(kept)
		}
		batches = append(batches, kept[start:end])
	}

	return batches
}

// BatchText renders a batch as the prompt-ready corpus block, one post per
// line.
func BatchText(batch []Post) (text string) {
	lines := make([]string, 0, len(batch))
	for _, p := range batch {
		lines = append(lines, "- "+strings.ReplaceAll(p.Text, "\n", " "))
	}
	text = strings.Join(lines, "\n")
	return text
}
