package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/utils"
)

const (
	defaultAPIURL      = "http://localhost:8080"
	defaultSessionFile = ".rentmio/session.json"
)

func main() {
	_ = godotenv.Load()
	utils.InitLogger(config.AppName)

	rootCmd := &cobra.Command{
		Use:           "rentmio",
		Short:         "Property rental marketplace server and command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("api-url", envOr("RENTMIO_API_URL", defaultAPIURL), "Base URL of a running rentmio server")
	rootCmd.PersistentFlags().String("session-file", envOr("RENTMIO_SESSION_FILE", defaultSessionFile), "Where the client keeps its tokens")

	rootCmd.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		SeedCmd(),
		LoginCmd(),
		LogoutCmd(),
		SearchCmd(),
		ChatCmd(),
	)

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
