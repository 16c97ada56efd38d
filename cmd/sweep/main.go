// Command sweep runs the Data Sweeper pipeline on local files: clean them,
// pick columns, convert between CSV and Excel, and optionally chart them.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasweeper/internal/logging"
)

func main() {
	// .env is optional for the CLI; only LOG_* is read from it.
	_ = godotenv.Load()

	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Clean, convert and chart CSV and Excel files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, "text")
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug|info|warn|error")

	rootCmd.AddCommand(newConvertCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
