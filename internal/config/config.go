package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/TimelordUK/texlog/internal/logger"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Config holds all application configuration
type Config struct {
	Theme       ThemeConfig      `toml:"theme"`
	Parser      ParserConfig     `toml:"parser"`
	Output      OutputConfig     `toml:"output"`
	Keybindings KeybindingConfig `toml:"keybindings"`
	Display     DisplayConfig    `toml:"display"`
	Watch       WatchConfig      `toml:"watch"`
	Logging     logger.Config    `toml:"logging"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	LineNumbers   string      `toml:"line_numbers"`
	StatusBar     string      `toml:"status_bar"`
	StatusBarText string      `toml:"status_bar_text"`
	Selection     string      `toml:"selection"`
	SyntaxTheme   string      `toml:"syntax_theme"`
	Levels        LevelColors `toml:"levels"`
}

// LevelColors defines colors for each diagnostic level
type LevelColors struct {
	Debug       string `toml:"debug"`
	Info        string `toml:"info"`
	Typesetting string `toml:"typesetting"`
	Warning     string `toml:"warning"`
	Error       string `toml:"error"`
}

// ParserConfig controls transcript parsing
type ParserConfig struct {
	WrapWidth int          `toml:"wrap_width"`
	MinLevel  texlog.Level `toml:"min_level"`
}

// OutputConfig controls reports written by the parse and watch commands
type OutputConfig struct {
	Format      string `toml:"format"` // "text", "json" or "yaml"
	ShowContent bool   `toml:"show_content"`
	Color       string `toml:"color"` // "auto", "on" or "off"
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit       []string `toml:"quit"`
	ScrollUp   []string `toml:"scroll_up"`
	ScrollDown []string `toml:"scroll_down"`
	PageUp     []string `toml:"page_up"`
	PageDown   []string `toml:"page_down"`
	Top        []string `toml:"top"`
	Bottom     []string `toml:"bottom"`
	Filter     []string `toml:"filter"`
	Goto       []string `toml:"goto"`
	Where      []string `toml:"where"`
	Jump       []string `toml:"jump"`
	ToggleLog  []string `toml:"toggle_log"`
	Export     []string `toml:"export"`
	Reload     []string `toml:"reload"`
}

// DisplayConfig holds display options
type DisplayConfig struct {
	ShowLineNumbers bool `toml:"show_line_numbers"`
	DetailHeight    int  `toml:"detail_height"`
	Follow          bool `toml:"follow"`
}

// WatchConfig controls follow mode
type WatchConfig struct {
	PollMs      int    `toml:"poll_ms"`
	MetricsAddr string `toml:"metrics_addr"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Theme: ThemeConfig{
			LineNumbers:   "240", // Dark gray
			StatusBar:     "236", // Darker gray background
			StatusBarText: "252", // Light gray text
			Selection:     "237",
			SyntaxTheme:   "monokai",
			Levels: LevelColors{
				Debug:       "244", // Medium gray
				Info:        "250", // Light gray
				Typesetting: "109", // Muted blue
				Warning:     "214", // Orange
				Error:       "196", // Bright red
			},
		},
		Parser: ParserConfig{
			WrapWidth: texlog.DefaultWrapWidth,
			MinLevel:  texlog.LevelDebug,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowContent: false,
			Color:       "auto",
		},
		Keybindings: KeybindingConfig{
			Quit:       []string{"q", "ctrl+c"},
			ScrollUp:   []string{"k", "up"},
			ScrollDown: []string{"j", "down"},
			PageUp:     []string{"b", "pgup", "ctrl+u"},
			PageDown:   []string{"f", "pgdown", "ctrl+d", " "},
			Top:        []string{"g", "home"},
			Bottom:     []string{"G", "end"},
			Filter:     []string{"/"},
			Goto:       []string{":"},
			Where:      []string{"x"},
			Jump:       []string{"enter"},
			ToggleLog:  []string{"tab"},
			Export:     []string{"e"},
			Reload:     []string{"r"},
		},
		Display: DisplayConfig{
			ShowLineNumbers: true,
			DetailHeight:    10,
		},
		Watch: WatchConfig{
			PollMs:      250,
			MetricsAddr: "",
		},
		Logging: logger.Config{
			Enabled:    false,
			Level:      "warn",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Validate checks values that would otherwise fail later in confusing ways
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output.format: unknown format %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("output.color: expected auto, on or off, got %q", c.Output.Color)
	}
	if c.Parser.WrapWidth < 0 {
		return fmt.Errorf("parser.wrap_width: must not be negative, got %d", c.Parser.WrapWidth)
	}
	if c.Watch.PollMs <= 0 {
		return fmt.Errorf("watch.poll_ms: must be positive, got %d", c.Watch.PollMs)
	}
	return nil
}

// Load loads config from the default location, falling back to defaults
func Load() (*Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFrom loads config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves config to the default location
func Save(cfg *Config) error {
	return SaveTo(getConfigPath(), cfg)
}

// SaveTo writes config to path, creating parent directories
func SaveTo(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "texlog", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "texlog", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
