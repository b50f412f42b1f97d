package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soulforge-ai/soulforge/pkg/corpus"
	"github.com/soulforge-ai/soulforge/pkg/profile"
	"github.com/soulforge-ai/soulforge/pkg/prompt"
	"github.com/soulforge-ai/soulforge/pkg/quirk"
	"github.com/soulforge-ai/soulforge/pkg/store"
	"github.com/soulforge-ai/soulforge/pkg/synthesis"
)

//nolint:gochecknoglobals // Cobra boilerplate
var handle string

//nolint:gochecknoglobals // Cobra boilerplate
var displayName string

//nolint:gochecknoglobals // Cobra boilerplate
var bio string

//nolint:gochecknoglobals // Cobra boilerplate
var styleMode bool

//nolint:gochecknoglobals // Cobra boilerplate
var batchSize int

//nolint:gochecknoglobals // Cobra boilerplate
var minWords int

//nolint:gochecknoglobals // Cobra boilerplate
var outputFile string

//nolint:gochecknoglobals // Cobra boilerplate
var force bool

//nolint:gochecknoglobals // Cobra boilerplate
var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <posts-file-or-url>",
	Short: "Build a personality profile from a posts corpus",
	Long: `Build a personality profile from a corpus of social posts.

The corpus can be a file path or an HTTP(S) URL, holding either a JSON array
of post objects or plain text with one post per line. The synthesized
profile is cached; a fresh cached profile is returned without new model
calls unless --force is given.

Example:
  soulforge synthesize posts.json --handle nadia
  soulforge synthesize https://example.com/exports/nadia.json --handle nadia
  soulforge synthesize posts.txt --handle nadia --style-mode --output profile.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSynthesize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(synthesizeCmd)
	synthesizeCmd.Flags().StringVar(&handle, "handle", "", "Account handle the posts belong to (required)")
	synthesizeCmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the handle)")
	synthesizeCmd.Flags().StringVar(&bio, "bio", "", "Account bio, included as analysis context")
	synthesizeCmd.Flags().BoolVar(&styleMode, "style-mode", false, "Original posts only: drop retweets, replies, and overlong posts")
	synthesizeCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Posts per model call (default from config)")
	synthesizeCmd.Flags().IntVar(&minWords, "min-words", 0, "Minimum words for a post to count (default from config)")
	synthesizeCmd.Flags().StringVar(&outputFile, "output", "", "Write the profile JSON to a file instead of stdout")
	synthesizeCmd.Flags().BoolVar(&force, "force", false, "Resynthesize even when a fresh cached profile exists")
	_ = synthesizeCmd.MarkFlagRequired("handle")
}

func runSynthesize(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	if !force {
		rec, ok, getErr := s.store.Get(ctx, handle)
		if getErr != nil {
			s.logger.Warn("profile cache read failed", zap.Error(getErr))
		}
		if ok {
			fmt.Printf("Using cached profile for %s (revision %s)\n", handle, rec.RevisionID)
			err = writeProfile(rec.Profile)
			return err
		}
	}

	posts, err := corpus.FetchWithContext(ctx, args[0])
	if err != nil {
		return err
	}

	opts := corpus.Options{
		MinWords:  s.cfg.Corpus.MinWords,
		BatchSize: s.cfg.Corpus.BatchSize,
		StyleMode: s.cfg.Corpus.StyleMode || styleMode,
	}
	if minWords > 0 {
		opts.MinWords = minWords
	}
	if batchSize > 0 {
		opts.BatchSize = batchSize
	}

	controller := synthesis.NewController(
		s.invoker(s.cfg.GetSynthesisModel()),
		s.limiter,
		s.throttler,
		s.logger,
		opts,
	)

	info := prompt.ProfileInfo{Handle: handle, DisplayName: displayName, Bio: bio}

	fmt.Printf("Synthesizing profile for %s from %d posts...\n", handle, len(posts))
	p, err := controller.Synthesize(ctx, info, posts, profile.DefaultTuning())
	if err != nil {
		err = errors.Wrapf(err, "synthesizing profile for %s", handle)
		return err
	}

	err = s.store.Put(ctx, store.Record{
		Handle:        handle,
		Profile:       p,
		Tuning:        profile.DefaultTuning(),
		Consciousness: quirk.DefaultConfig(),
	})
	if err != nil {
		s.logger.Warn("profile cache write failed", zap.Error(err))
		err = nil
	}

	err = writeProfile(p)
	return err
}

func writeProfile(p profile.Profile) (err error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "encoding profile")
		return err
	}

	if outputFile == "" {
		fmt.Println(string(data))
		return err
	}

	err = os.WriteFile(outputFile, append(data, '\n'), 0600)
	if err != nil {
		err = errors.Wrapf(err, "writing profile to %s", outputFile)
		return err
	}

	fmt.Printf("Profile written to %s\n", outputFile)
	return err
}
