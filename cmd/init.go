package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soulforge-ai/soulforge/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Create a default configuration file at $HOME/.soulforge/config.json.

Edit the file afterwards to set your Anthropic API key, or export
ANTHROPIC_API_KEY instead.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	err = config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	fmt.Println("Config file created. Set your API key before running 'soulforge synthesize'.")
	return err
}
