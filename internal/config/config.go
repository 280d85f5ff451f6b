package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration.
type Config struct {
	GitLab GitLabConfig `yaml:"gitlab"`
	Review ReviewConfig `yaml:"review"`
}

// GitLabConfig holds GitLab-specific settings.
type GitLabConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// ReviewConfig holds review output settings.
type ReviewConfig struct {
	ChangelogFile string `yaml:"changelog_file"`
	CommitMessage string `yaml:"commit_message"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		GitLab: GitLabConfig{
			URL: "https://gitlab.com",
		},
		Review: ReviewConfig{
			ChangelogFile: "CHANGELOG.md",
			CommitMessage: "Update changelog",
		},
	}
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
