package cmd

import (
	"fmt"
	"os"

	"github.com/promptgate/apiserver/config"
	"github.com/promptgate/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// rootCmd starts the backend server. There are no subcommands: the process
// boots, migrates the schema, and serves until interrupted.
var rootCmd = &cobra.Command{
	Use:   "promptgate",
	Short: "Starts the promptgate backend server",
	Long: `Starts the promptgate backend server. Usage:

	promptgate
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
			os.Exit(1)
		}

		srv, err := server.New(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
