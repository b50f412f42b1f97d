package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soulforge-ai/soulforge/pkg/prompt"
	"github.com/soulforge-ai/soulforge/pkg/quirk"
	"github.com/soulforge-ai/soulforge/pkg/reply"
)

//nolint:gochecknoglobals // Cobra boilerplate
var conversationID string

//nolint:gochecknoglobals // Cobra boilerplate
var tuneFormality float64

//nolint:gochecknoglobals // Cobra boilerplate
var tuneEnthusiasm float64

//nolint:gochecknoglobals // Cobra boilerplate
var tuneEmoji float64

//nolint:gochecknoglobals // Cobra boilerplate
var tuneVerbosity float64

//nolint:gochecknoglobals // Cobra boilerplate
var tuneTechnical float64

//nolint:gochecknoglobals // Cobra boilerplate
var quirkFrequency float64

//nolint:gochecknoglobals // Cobra boilerplate
var intelligence float64

//nolint:gochecknoglobals // Cobra boilerplate
var quirks []string

//nolint:gochecknoglobals // Cobra boilerplate
var chatCmd = &cobra.Command{
	Use:   "chat <handle>",
	Short: "Chat with a synthesized profile",
	Long: `Chat interactively with a previously synthesized profile.

Replies follow the profile's voice and the style bands from the tuning flags.
Type 'exit' or 'quit' (or press Ctrl-D) to end the conversation.

Example:
  soulforge chat nadia
  soulforge chat nadia --emoji 90 --enthusiasm 85
  soulforge chat nadia --quirk-frequency 80 --quirks word-repetition,distraction`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation ID for reply dedup (default: random)")
	chatCmd.Flags().Float64Var(&tuneFormality, "formality", 50, "Formality band 0-100")
	chatCmd.Flags().Float64Var(&tuneEnthusiasm, "enthusiasm", 50, "Enthusiasm band 0-100")
	chatCmd.Flags().Float64Var(&tuneEmoji, "emoji", 50, "Emoji usage band 0-100")
	chatCmd.Flags().Float64Var(&tuneVerbosity, "verbosity", 50, "Verbosity band 0-100")
	chatCmd.Flags().Float64Var(&tuneTechnical, "technical", 50, "Technical level band 0-100")
	chatCmd.Flags().Float64Var(&quirkFrequency, "quirk-frequency", 0, "How often quirks surface, 0-100")
	chatCmd.Flags().Float64Var(&intelligence, "intelligence", 100, "Coherence level 0-100")
	chatCmd.Flags().StringSliceVar(&quirks, "quirks", nil, "Quirk identifiers to enable")
}

func runChat(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	chatHandle := args[0]

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	rec, ok, err := s.store.Get(ctx, chatHandle)
	if err != nil {
		err = errors.Wrapf(err, "loading profile for %s", chatHandle)
		return err
	}
	if !ok {
		err = errors.Errorf("no fresh profile for %s (run 'soulforge synthesize' first)", chatHandle)
		return err
	}

	// Flags override the stored tuning only when explicitly set.
	tuning := rec.Tuning
	if cmd.Flags().Changed("formality") {
		tuning.Formality = tuneFormality
	}
	if cmd.Flags().Changed("enthusiasm") {
		tuning.Enthusiasm = tuneEnthusiasm
	}
	if cmd.Flags().Changed("emoji") {
		tuning.EmojiUsage = tuneEmoji
	}
	if cmd.Flags().Changed("verbosity") {
		tuning.Verbosity = tuneVerbosity
	}
	if cmd.Flags().Changed("technical") {
		tuning.TechnicalLevel = tuneTechnical
	}

	consciousness := rec.Consciousness
	if cmd.Flags().Changed("quirk-frequency") {
		consciousness.QuirkFrequency = quirkFrequency
	}
	if cmd.Flags().Changed("intelligence") {
		consciousness.IntelligenceLevel = intelligence
	}
	if len(quirks) > 0 {
		consciousness.Quirks = quirks
	}

	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	generator := reply.NewGenerator(
		s.invoker(s.cfg.GetChatModel()),
		quirk.NewEngine(time.Now().UnixNano()),
		s.limiter,
		s.throttler,
		s.logger,
	)

	fmt.Printf("Chatting with %s (conversation %s). Type 'exit' to leave.\n\n", chatHandle, conversationID)

	var history []prompt.Turn
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			break
		}

		answer, replyErr := generator.Reply(ctx, reply.Request{
			ConversationID: conversationID,
			Profile:        rec.Profile,
			Tuning:         tuning,
			Consciousness:  consciousness,
			History:        history,
			Message:        message,
		})
		if replyErr != nil {
			s.logger.Error("reply generation failed", zap.Error(replyErr))
			fmt.Println("(no reply: the model could not produce an in-character answer)")
			continue
		}

		fmt.Printf("%s> %s\n", chatHandle, answer)
		history = append(history,
			prompt.Turn{Role: "user", Content: message},
			prompt.Turn{Role: "assistant", Content: answer},
		)
	}

	err = scanner.Err()
	if err != nil {
		err = errors.Wrap(err, "reading chat input")
	}
	return err
}
