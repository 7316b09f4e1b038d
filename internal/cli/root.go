package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "trivia-quiz-service",
		Short: "Trivia quiz sessions with a shared top-10 leaderboard",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "HTTP port the quiz websocket server listens on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to the YAML configuration file")
	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
