package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BatmanBruc/yt-audio-bot/internal/config"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "yt-audio-bot",
	Short: "Telegram bot that finds YouTube videos and sends their audio",
	Long: `yt-audio-bot answers Telegram messages: a song name runs a search,
a YouTube link is turned into an audio file. Users must belong to the
configured channels, and each user gets one search or download per
cooldown window.

Running without a subcommand is the same as "run".

Environment Variables:
  BOT_TOKEN           Bot API token (required)
  BOT_MODE            polling or webhook
  REQUIRED_CHANNELS   Comma separated @channels users must join
  COOLDOWN_BACKEND    file, redis or memory
  POSTGRES_DSN        Enables the user registry when set`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "config.env", "dotenv file loaded before reading the environment")
	bindRunFlags(rootCmd)
	bindRunFlags(runCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, versionCmd)
}

// Execute runs the CLI until SIGINT or SIGTERM.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
