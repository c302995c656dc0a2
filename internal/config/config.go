package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// DBPath keeps the engine database in a file; empty uses a temporary one.
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	PreviewLimit     int     `mapstructure:"preview_limit" yaml:"preview_limit"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	OutputFormat     string  `mapstructure:"output_format" yaml:"output_format"`
	Backup           bool    `mapstructure:"backup" yaml:"backup"`
	ProjectsDir      string  `mapstructure:"projects_dir" yaml:"projects_dir"`
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"db_path", "temp_dir", "log_level", "log_format", "preview_limit",
	"outlier_threshold", "output_format", "backup", "projects_dir",
}

// Dir returns the configuration directory, ~/.sheetql.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sheetql"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sheetql/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SHEETQL")
	v.AutomaticEnv()

	v.SetDefault("db_path", "")
	v.SetDefault("temp_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("preview_limit", 5)
	v.SetDefault("outlier_threshold", 2.0)
	v.SetDefault("output_format", "table")
	v.SetDefault("backup", true)
	v.SetDefault("projects_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ProjectsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ProjectsDir = filepath.Join(dir, "projects")
	}
	return &c, nil
}

// Set assigns a key from its string form, validating enumerated values.
func (c *Global) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "db_path":
		c.DBPath = value
	case "temp_dir":
		c.TempDir = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_level %q (debug, info, warn, error)", value)
		}
	case "log_format":
		switch strings.ToLower(value) {
		case "text", "json":
			c.LogFormat = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_format %q (text, json)", value)
		}
	case "preview_limit":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("invalid preview_limit %q", value)
		}
		c.PreviewLimit = n
	case "outlier_threshold":
		var f float64
		if _, err := fmt.Sscanf(value, "%g", &f); err != nil || f <= 0 {
			return fmt.Errorf("invalid outlier_threshold %q", value)
		}
		c.OutlierThreshold = f
	case "output_format":
		switch strings.ToLower(value) {
		case "table", "csv", "json", "markdown":
			c.OutputFormat = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid output_format %q (table, csv, json, markdown)", value)
		}
	case "backup":
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			c.Backup = true
		case "false", "0", "no", "off":
			c.Backup = false
		default:
			return fmt.Errorf("invalid backup %q (true or false)", value)
		}
	case "projects_dir":
		c.ProjectsDir = value
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
