package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [JSON|@FILE|-]",
		Short: "Show the provider schema and JSON Schema for a property map",
		Long: `schema reads a flat property map such as {"title":"string"} and prints
the response schema sent to Gemini. With --format jsonschema it prints the
exported JSON Schema instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			title, _ := cmd.Flags().GetString("title")

			raw, err := readArg(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return writeSchema(cmd.Context(), cmd.OutOrStdout(), raw, format, title)
		},
	}
	cmd.Flags().String("format", "provider", "Output format: provider or jsonschema")
	cmd.Flags().String("title", "", "Title of the exported JSON Schema")
	return cmd
}

func writeSchema(ctx context.Context, out io.Writer, raw []byte, format, title string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var doc any
	switch format {
	case "provider":
		schema, err := generation.NormalizeSchema(ctx, raw)
		if err != nil {
			return err
		}
		doc = schema
	case "jsonschema":
		props, err := generation.ParseProperties(ctx, raw)
		if err != nil {
			return err
		}
		doc = prompt.ExportJSONSchema(title, props)
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// readArg accepts inline JSON, @path for a file, or - for stdin.
func readArg(stdin io.Reader, arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		return []byte(arg), nil
	}
}
