package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"promptforge/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "promptctl",
		Short: "Operator tooling for the promptforge API",
		Long: `promptctl manages the promptforge database and lets operators try
prompts against Gemini without running the server.

Examples:
  promptctl migrate up
  promptctl migrate version
  promptctl schema '{"title":"string","score":"number"}'
  promptctl generate --description "Summarize" --content "..."`,
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newGenerateCmd())
	return root
}
