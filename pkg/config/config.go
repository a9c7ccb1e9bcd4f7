package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Section names for the two credential blocks in the config file
const (
	SectionDownload   = "download_credential"
	SectionAutoFollow = "auto_follow_credential"
)

// Config holds all configuration for the bilifollow tools
type Config struct {
	// Credentials for the export run
	DownloadCredential CredentialConfig `yaml:"download_credential" json:"download_credential"`

	// Credentials for the bulk-follow run
	AutoFollowCredential CredentialConfig `yaml:"auto_follow_credential" json:"auto_follow_credential"`

	// Request pacing and retry budget
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Export output settings
	Export ExportConfig `yaml:"export" json:"export"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CredentialConfig holds one Bilibili credential section. Sessdata and
// BiliJct are the session/anti-forgery cookie pair; UID is the owning
// account's mid; Buvid3 is an optional device cookie.
type CredentialConfig struct {
	Sessdata string `yaml:"sessdata" json:"sessdata"`
	BiliJct  string `yaml:"bili_jct" json:"bili_jct"`
	UID      int64  `yaml:"uid" json:"uid"`
	Buvid3   string `yaml:"buvid3,omitempty" json:"buvid3,omitempty"`
}

// PacingConfig holds the fixed intervals that throttle API calls
type PacingConfig struct {
	// PageInterval is the pause between followings pages during export
	PageInterval time.Duration `yaml:"page_interval" json:"page_interval"`
	// SkipInterval is the short pause after a target is skipped by the pre-check
	SkipInterval time.Duration `yaml:"skip_interval" json:"skip_interval"`
	// FollowInterval is the pause between targets after a follow attempt settles
	FollowInterval time.Duration `yaml:"follow_interval" json:"follow_interval"`
	// RetryInterval is the pause before retrying a failed follow attempt
	RetryInterval time.Duration `yaml:"retry_interval" json:"retry_interval"`
	// MaxRetries is the number of retries after the first follow attempt
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
}

// ExportConfig holds output settings for the export run
type ExportConfig struct {
	OutputFile     string        `yaml:"output_file" json:"output_file"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the stock pacing values
func DefaultConfig() *Config {
	return &Config{
		Pacing: PacingConfig{
			PageInterval:   1 * time.Second,
			SkipInterval:   500 * time.Millisecond,
			FollowInterval: 3 * time.Second,
			RetryInterval:  10 * time.Second,
			MaxRetries:     10,
		},
		Export: ExportConfig{
			OutputFile:     "followings.json",
			RequestTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		"config.yaml",
		"config.yml",
		".bilifollow.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "bilifollow", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".bilifollow.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadFromEnv overrides configuration from environment variables.
// Credential variables apply to both sections so a single exported
// account can drive either tool.
func (c *Config) LoadFromEnv() error {
	if sessdata := os.Getenv("BILIFOLLOW_SESSDATA"); sessdata != "" {
		c.DownloadCredential.Sessdata = sessdata
		c.AutoFollowCredential.Sessdata = sessdata
	}
	if jct := os.Getenv("BILIFOLLOW_BILI_JCT"); jct != "" {
		c.DownloadCredential.BiliJct = jct
		c.AutoFollowCredential.BiliJct = jct
	}
	if uid := os.Getenv("BILIFOLLOW_UID"); uid != "" {
		if val, err := strconv.ParseInt(uid, 10, 64); err == nil && val > 0 {
			c.DownloadCredential.UID = val
			c.AutoFollowCredential.UID = val
		}
	}
	if buvid3 := os.Getenv("BILIFOLLOW_BUVID3"); buvid3 != "" {
		c.DownloadCredential.Buvid3 = buvid3
		c.AutoFollowCredential.Buvid3 = buvid3
	}
	if out := os.Getenv("BILIFOLLOW_OUTPUT_FILE"); out != "" {
		c.Export.OutputFile = out
	}
	if logLevel := os.Getenv("BILIFOLLOW_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// Credential returns the credential section with the given name
func (c *Config) Credential(section string) (*CredentialConfig, error) {
	switch section {
	case SectionDownload:
		return &c.DownloadCredential, nil
	case SectionAutoFollow:
		return &c.AutoFollowCredential, nil
	default:
		return nil, fmt.Errorf("unknown credential section: %s", section)
	}
}

// Validate checks one credential section for the required fields.
// A missing or empty sessdata/bili_jct, or a zero uid, is rejected
// before any network call is made.
func (cc *CredentialConfig) Validate(section string) error {
	var errs []error

	if strings.TrimSpace(cc.Sessdata) == "" {
		errs = append(errs, fmt.Errorf("[%s] sessdata is required", section))
	}
	if strings.TrimSpace(cc.BiliJct) == "" {
		errs = append(errs, fmt.Errorf("[%s] bili_jct is required", section))
	}
	if cc.UID == 0 {
		errs = append(errs, fmt.Errorf("[%s] uid must be non-zero", section))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks the non-credential sections of the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Pacing.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Pacing.FollowInterval < 0 || c.Pacing.RetryInterval < 0 ||
		c.Pacing.PageInterval < 0 || c.Pacing.SkipInterval < 0 {
		errs = append(errs, errors.New("pacing intervals cannot be negative"))
	}
	if c.Export.OutputFile == "" {
		errs = append(errs, errors.New("export output file is required"))
	}
	if c.Export.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bilifollow.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
