package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"promptforge/internal/infrastructure/logger"
)

// DefaultUploadExtensions are the attachment types accepted on chat turns.
var DefaultUploadExtensions = []string{"txt", "pdf", "doc", "docx", "jpg", "jpeg", "png"}

// ModelPrice is USD per one million tokens, kept as strings so the caller can
// parse them into exact decimals.
type ModelPrice struct {
	PromptPerMillion     string `yaml:"prompt_per_million"`
	CompletionPerMillion string `yaml:"completion_per_million"`
}

// GenerationFileConfig holds the optional YAML overrides for uploads and pricing.
type GenerationFileConfig struct {
	UploadExtensions []string              `yaml:"upload_extensions"`
	Pricing          map[string]ModelPrice `yaml:"pricing"`
}

// AllowedExtension reports whether ext (with or without the dot) is accepted.
func (g *GenerationFileConfig) AllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	list := DefaultUploadExtensions
	if g != nil && len(g.UploadExtensions) > 0 {
		list = g.UploadExtensions
	}
	for _, allowed := range list {
		if strings.EqualFold(strings.TrimPrefix(allowed, "."), ext) {
			return true
		}
	}
	return false
}

// PriceFor returns the configured price for model, if any.
func (g *GenerationFileConfig) PriceFor(model string) (ModelPrice, bool) {
	if g == nil || g.Pricing == nil {
		return ModelPrice{}, false
	}
	price, ok := g.Pricing[model]
	return price, ok
}

// LoadGenerationFileConfig reads path. An empty path yields the defaults.
func LoadGenerationFileConfig(path string) (*GenerationFileConfig, error) {
	if strings.TrimSpace(path) == "" {
		return &GenerationFileConfig{}, nil
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read generation config %q: %w", cleanPath, err)
	}

	var doc GenerationFileConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse generation config %q: %w", cleanPath, err)
	}
	for i, ext := range doc.UploadExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			return nil, errors.New("upload_extensions must not contain empty entries")
		}
		doc.UploadExtensions[i] = ext
	}

	log := logger.GetLogger()
	log.Info().
		Str("path", cleanPath).
		Int("upload_extensions", len(doc.UploadExtensions)).
		Int("priced_models", len(doc.Pricing)).
		Msg("loaded generation config file")
	return &doc, nil
}
