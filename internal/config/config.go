package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	DefaultMaxIssues = 10
	DefaultLanguage  = "en"
	DefaultFormat    = "markdown"
	DefaultTimeout   = 30 * time.Second
)

// Config holds everything one report run needs. Each setting resolves
// from its flag first, then a SONARQUBE_* environment variable
// (optionally loaded from a .env file), then the default.
type Config struct {
	URL            string        `mapstructure:"url"`
	Token          string        `mapstructure:"token"`
	Projects       string        `mapstructure:"projects"`
	ProjectPattern string        `mapstructure:"project_pattern"`
	MaxIssues      int           `mapstructure:"max_issues"`
	Output         string        `mapstructure:"output"`
	Language       string        `mapstructure:"report_language"`
	Format         string        `mapstructure:"format"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

var settingKeys = []string{
	"url", "token", "projects", "project_pattern",
	"max_issues", "output", "report_language", "format", "timeout",
}

// flagBindings maps viper keys to the flag names the report command
// registers. Keys without a flag (timeout) stay env/default only.
var flagBindings = map[string]string{
	"url":             "url",
	"token":           "token",
	"projects":        "projects",
	"project_pattern": "project-pattern",
	"max_issues":      "max-issues",
	"output":          "output",
	"report_language": "language",
	"format":          "format",
}

func Load(flags *pflag.FlagSet) (*Config, error) {
	// Matches the original tool's dotenv behavior: a .env file fills
	// in unset variables, real environment variables win.
	_ = gotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SONARQUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("max_issues", DefaultMaxIssues)
	v.SetDefault("report_language", DefaultLanguage)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("timeout", DefaultTimeout)

	for _, key := range settingKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if flags != nil {
		for key, flagName := range flagBindings {
			if flag := flags.Lookup(flagName); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flagName, err)
				}
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("server URL is required (--url or SONARQUBE_URL)")
	}
	if c.Token == "" {
		return fmt.Errorf("API token is required (--token or SONARQUBE_TOKEN)")
	}
	if c.MaxIssues <= 0 {
		return fmt.Errorf("max issues per project must be positive, got %d", c.MaxIssues)
	}
	switch strings.ToLower(c.Format) {
	case "markdown", "md", "json":
	default:
		return fmt.Errorf("unknown output format %q (markdown, json)", c.Format)
	}
	return nil
}

// ProjectKeys parses the comma-separated project list. An empty result
// means no explicit keys were requested.
func (c *Config) ProjectKeys() []string {
	var keys []string
	for _, key := range strings.Split(c.Projects, ",") {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
