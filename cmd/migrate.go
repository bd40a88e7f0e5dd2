package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BatmanBruc/yt-audio-bot/internal/logging"
	"github.com/BatmanBruc/yt-audio-bot/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the user registry migrations and exit",
	Long: `migrate applies the embedded goose migrations to the database named by
POSTGRES_DSN (or POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB, POSTGRES_USER
and POSTGRES_PASSWORD when the DSN is unset).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.SetLogLevel(os.Getenv("LOG_LEVEL"))
		if err := store.Migrate(cmd.Context(), os.Getenv("POSTGRES_DSN")); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}
