package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "OVINGSLOGG"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultCacheTTL     = 30 * time.Second
	defaultLogLevel     = "info"
	defaultLocalDBPath  = "ovingslogg.db"
	defaultGitHubAPIURL = "https://api.github.com"
)

// AppConfig captures runtime configuration for the practice-log server.
type AppConfig struct {
	HTTPAddress  string
	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubAPIURL string
	IssueNumber  int
	CacheTTL     time.Duration
	LocalDBPath  string
	LogLevel     string
}

// RemoteEnabled reports whether the GitHub-backed store should be used.
// Without a token the server falls back to the local sqlite store.
func (c AppConfig) RemoteEnabled() bool {
	return strings.TrimSpace(c.GitHubToken) != ""
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("github.api_url", defaultGitHubAPIURL)
	configViper.SetDefault("cache.ttl_seconds", int(defaultCacheTTL.Seconds()))
	configViper.SetDefault("database.path", defaultLocalDBPath)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:  configViper.GetString("http.address"),
		GitHubToken:  configViper.GetString("github.token"),
		GitHubOwner:  configViper.GetString("github.owner"),
		GitHubRepo:   configViper.GetString("github.repo"),
		GitHubAPIURL: configViper.GetString("github.api_url"),
		IssueNumber:  configViper.GetInt("github.issue_number"),
		CacheTTL:     time.Duration(configViper.GetInt("cache.ttl_seconds")) * time.Second,
		LocalDBPath:  configViper.GetString("database.path"),
		LogLevel:     configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if c.IssueNumber <= 0 {
		return fmt.Errorf("github.issue_number must be positive")
	}
	if c.RemoteEnabled() {
		if strings.TrimSpace(c.GitHubOwner) == "" {
			return fmt.Errorf("github.owner is required when github.token is set")
		}
		if strings.TrimSpace(c.GitHubRepo) == "" {
			return fmt.Errorf("github.repo is required when github.token is set")
		}
	} else if strings.TrimSpace(c.LocalDBPath) == "" {
		return fmt.Errorf("database.path is required when no github.token is set")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}
	return nil
}
