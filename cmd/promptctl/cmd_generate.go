package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"promptforge/internal/application/generator"
	"promptforge/internal/config"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/infrastructure/inference"
	"promptforge/internal/infrastructure/logger"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one stateless generation against Gemini",
		Long: `generate builds the same request as POST /v1/generate-with-ai without
touching the database. Nothing is persisted and no usage is counted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			content, _ := cmd.Flags().GetString("content")
			schemaArg, _ := cmd.Flags().GetString("schema")
			debug, _ := cmd.Flags().GetBool("debug")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := logger.New(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}

			p := &prompt.Prompt{PublicID: "cli", Name: "cli", Description: description}
			if schemaArg != "" {
				raw, err := readArg(cmd.InOrStdin(), schemaArg)
				if err != nil {
					return err
				}
				p.JSONSchema = raw
			}

			service := generator.NewService(schemaOnlyPrompts{}, nil, usagePrinter{out: cmd.ErrOrStderr()}, inference.NewGeminiClient(cfg), nil)
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), service, generator.Request{
				Prompt:  p,
				Mode:    generation.ModeStateless,
				Content: content,
				Debug:   debug,
			})
		},
	}
	cmd.Flags().String("description", "", "System instruction for the model")
	cmd.Flags().String("content", "", "Request text")
	cmd.Flags().String("schema", "", "Property map as JSON, @FILE or -")
	cmd.Flags().Bool("debug", false, "Print the assembled request instead of calling Gemini")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, service *generator.Service, req generator.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := service.Generate(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if result.Debug != nil {
		return enc.Encode(result.Debug)
	}
	return enc.Encode(result.Output)
}

// schemaOnlyPrompts resolves schemas from the in-memory prompt and skips the
// usage counter, which lives in the database.
type schemaOnlyPrompts struct{}

func (schemaOnlyPrompts) ResponseSchema(ctx context.Context, p *prompt.Prompt) (*generation.ResponseSchema, error) {
	if !p.HasSchema() {
		return nil, nil
	}
	return generation.NormalizeSchema(ctx, p.JSONSchema)
}

func (schemaOnlyPrompts) IncrementUsage(context.Context, *prompt.Prompt) error {
	return nil
}

type usagePrinter struct {
	out io.Writer
}

func (u usagePrinter) RecordUsage(_ context.Context, usage *tokenusage.TokenUsage) error {
	_, err := fmt.Fprintf(u.out, "model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d\n",
		usage.Model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	return err
}
