package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Workbook
	SheetName  string  `mapstructure:"sheet_name" yaml:"sheet_name"`
	FontFamily string  `mapstructure:"font_family" yaml:"font_family"`
	FontSize   float64 `mapstructure:"font_size" yaml:"font_size"`

	// Statistics: "uniform" or "legacy"
	SpanMode string `mapstructure:"span_mode" yaml:"span_mode"`

	// Saving
	Backup    bool   `mapstructure:"backup" yaml:"backup"`
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`

	// Report extraction
	SectionMarkers        []string `mapstructure:"section_markers" yaml:"section_markers"`
	AllowDuplicateSamples bool     `mapstructure:"allow_duplicate_samples" yaml:"allow_duplicate_samples"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"sheet_name", "font_family", "font_size", "span_mode",
	"backup", "backup_dir", "section_markers", "allow_duplicate_samples", "log_level",
}

const (
	dirName   = ".sporesheet"
	envPrefix = "SPORESHEET"
)

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sporesheet/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
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

// Defaults is the configuration used when no file or env value says otherwise.
func Defaults() *Global {
	return &Global{
		FontFamily:     "Arial",
		FontSize:       11,
		SpanMode:       "uniform",
		Backup:         true,
		SectionMarkers: []string{"outdoor", "outdoors", "extérieur"},
		LogLevel:       "warn",
	}
}

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("sheet_name", d.SheetName)
	v.SetDefault("font_family", d.FontFamily)
	v.SetDefault("font_size", d.FontSize)
	v.SetDefault("span_mode", d.SpanMode)
	v.SetDefault("backup", d.Backup)
	v.SetDefault("backup_dir", d.BackupDir)
	v.SetDefault("section_markers", d.SectionMarkers)
	v.SetDefault("allow_duplicate_samples", d.AllowDuplicateSamples)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Env values for lists arrive comma separated.
	c.SectionMarkers = splitList(strings.Join(c.SectionMarkers, ","))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no command could use.
func (c *Global) Validate() error {
	switch c.SpanMode {
	case "uniform", "legacy":
	default:
		return fmt.Errorf("invalid span_mode: %s (use uniform or legacy)", c.SpanMode)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("invalid font_size: %v", c.FontSize)
	}
	return nil
}

// Set assigns one key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "sheet_name":
		c.SheetName = val
	case "font_family":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("font_family cannot be empty")
		}
		c.FontFamily = val
	case "font_size":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid number for font_size: %v", val)
		}
		c.FontSize = f
	case "span_mode":
		switch strings.ToLower(val) {
		case "uniform", "legacy":
			c.SpanMode = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid span_mode: %s (use uniform or legacy)", val)
		}
	case "backup":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for backup: %v", val)
		}
		c.Backup = b
	case "backup_dir":
		c.BackupDir = val
	case "section_markers":
		m := splitList(val)
		if len(m) == 0 {
			return fmt.Errorf("section_markers needs at least one marker")
		}
		c.SectionMarkers = m
	case "allow_duplicate_samples":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for allow_duplicate_samples: %v", val)
		}
		c.AllowDuplicateSamples = b
	case "log_level":
		c.LogLevel = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get renders one key for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "sheet_name":
		return c.SheetName, nil
	case "font_family":
		return c.FontFamily, nil
	case "font_size":
		return strconv.FormatFloat(c.FontSize, 'f', -1, 64), nil
	case "span_mode":
		return c.SpanMode, nil
	case "backup":
		return strconv.FormatBool(c.Backup), nil
	case "backup_dir":
		return c.BackupDir, nil
	case "section_markers":
		return strings.Join(c.SectionMarkers, ","), nil
	case "allow_duplicate_samples":
		return strconv.FormatBool(c.AllowDuplicateSamples), nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
