package feed

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed filters.yml
var defaultConfig []byte

// LoadConfig reads the scraper configuration from path, or the embedded default when path is empty.
func LoadConfig(path string) (*Config, error) {
	data := defaultConfig
	source := "embedded"

	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		data = fileData
		source = path
	}

	feedConfig, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", source, err)
	}

	if err := validateConfig(feedConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", source, err)
	}

	slog.Debug("Configuration loaded",
		"source", source,
		"url", feedConfig.URL,
		"groups", len(feedConfig.Rules.RequireAny),
		"blacklist", len(feedConfig.Rules.Blacklist))

	return feedConfig, nil
}

func parseConfig(data []byte) (*Config, error) {
	var feedConfig Config
	if err := yaml.Unmarshal(data, &feedConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if feedConfig.Settings.Timeout == 0 {
		feedConfig.Settings.Timeout = 30
	}
	if feedConfig.Settings.MaxDescription == 0 {
		feedConfig.Settings.MaxDescription = 200
	}

	return &feedConfig, nil
}

func validateConfig(feedConfig *Config) error {
	if feedConfig == nil {
		return fmt.Errorf("feedConfig is nil")
	}

	requiredFields := map[string]string{
		"feed URL": feedConfig.URL,
		"source":   feedConfig.Source,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"timeout":         feedConfig.Settings.Timeout,
		"max description": feedConfig.Settings.MaxDescription,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if len(feedConfig.Rules.RequireAny) == 0 {
		return fmt.Errorf("at least one require_any keyword group is required")
	}

	for i, group := range feedConfig.Rules.RequireAny {
		if len(group.Keywords) == 0 {
			return fmt.Errorf("keyword group at index %d (%s) has no keywords", i, group.Name)
		}
		for _, keyword := range group.Keywords {
			if strings.TrimSpace(keyword) == "" {
				return fmt.Errorf("keyword group at index %d (%s) contains an empty keyword", i, group.Name)
			}
		}
	}

	for i, keyword := range feedConfig.Rules.Blacklist {
		if strings.TrimSpace(keyword) == "" {
			return fmt.Errorf("blacklist entry at index %d is empty", i)
		}
	}

	return nil
}
