package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/reviewlens/internal/dataset"
	"github.com/KaramelBytes/reviewlens/internal/utils"
)

const (
	dirName  = ".reviewlens"
	fileName = "config.yaml"
)

// Global configuration structure.
type Global struct {
	// Dataset
	DatasetPath        string `mapstructure:"dataset_path" yaml:"dataset_path"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	Sheet              string `mapstructure:"sheet" yaml:"sheet"`
	RescoreMissing     bool   `mapstructure:"rescore_missing" yaml:"rescore_missing"`

	// Views
	PreviewRows int `mapstructure:"preview_rows" yaml:"preview_rows"`

	// HTTP dashboard
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	SessionTTLMin int    `mapstructure:"session_ttl_min" yaml:"session_ttl_min"`
	MaxSessions   int    `mapstructure:"max_sessions" yaml:"max_sessions"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultDatasetPath is data/customer_reviews.csv next to the running binary.
func DefaultDatasetPath() string {
	rel := filepath.Join("data", "customer_reviews.csv")
	exe, err := os.Executable()
	if err != nil {
		return rel
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), rel)
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.reviewlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, fileName)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (REVIEWLENS_*, including a local .env file) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is the common case.
	_ = gotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REVIEWLENS")
	v.AutomaticEnv()

	v.SetDefault("dataset_path", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("sheet", "")
	v.SetDefault("rescore_missing", false)
	v.SetDefault("preview_rows", 5)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("session_ttl_min", 30)
	v.SetDefault("max_sessions", 1000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
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
	if c.DatasetPath == "" {
		c.DatasetPath = DefaultDatasetPath()
	}
	return &c, nil
}

// SessionTTL is the idle lifetime of a dashboard session.
func (c *Global) SessionTTL() time.Duration {
	if c.SessionTTLMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// DatasetOptions translates the separator settings into reader options.
func (c *Global) DatasetOptions() (dataset.Options, error) {
	opt := dataset.Options{Sheet: c.Sheet}
	switch strings.ToLower(c.Delimiter) {
	case "":
	case ",", "comma":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";", "semicolon":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab')", c.Delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(c.DecimalSeparator)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", c.DecimalSeparator)
	}
	switch strings.ToLower(c.ThousandsSeparator) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", c.ThousandsSeparator)
	}
	return opt, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}
