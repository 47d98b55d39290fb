package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the immutable runtime configuration of the dashboard.
// It is built once by Load and passed by value into the resolver, renderer and API.
type Config struct {
	DataPath    string   `mapstructure:"data_path"`
	Addr        string   `mapstructure:"addr"`
	LogLevel    string   `mapstructure:"log_level"`
	PageSize    int      `mapstructure:"page_size"`
	RateLimit   float64  `mapstructure:"rate_limit"`
	ColorColumn string   `mapstructure:"color_column"`
	HoverColumn string   `mapstructure:"hover_column"`
	Columns     Columns  `mapstructure:"columns"`
	Theme       Theme    `mapstructure:"theme"`
	Defaults    Defaults `mapstructure:"defaults"`
}

// Defaults are the initial values of the three input controls.
type Defaults struct {
	Chart string `mapstructure:"chart"`
	X     string `mapstructure:"x"`
	Y     string `mapstructure:"y"`
}

// Default returns the built-in configuration for the NASA exoplanet dataset.
func Default() Config {
	return Config{
		DataPath:    "NASA Exoplanets Data.csv",
		Addr:        ":8050",
		LogLevel:    "info",
		PageSize:    10,
		ColorColumn: "planet_type",
		HoverColumn: "name",
		Columns:     DefaultColumns(),
		Theme:       DefaultTheme(),
		Defaults: Defaults{
			Chart: "histogram",
			X:     "distance",
			Y:     "stellar_magnitude",
		},
	}
}

// Validate checks the parts of the configuration the program cannot run without.
// Column names are not checked against the data here.
func (c Config) Validate() error {
	if err := c.Columns.Validate(); err != nil {
		return err
	}
	if c.ColorColumn == "" {
		return errors.New("config: color_column must be set")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate_limit must not be negative, got %v", c.RateLimit)
	}
	return nil
}

// Load layers defaults, an optional config file, EXODASH_* environment variables
// and the flags that were explicitly set. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("EXODASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.Visit(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"data":       "data_path",
	"addr":       "addr",
	"log-level":  "log_level",
	"page-size":  "page_size",
	"rate-limit": "rate_limit",
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("color_column", d.ColorColumn)
	v.SetDefault("hover_column", d.HoverColumn)

	v.SetDefault("columns.numeric", d.Columns.Numeric)
	v.SetDefault("columns.categorical", d.Columns.Categorical)

	v.SetDefault("theme.background", d.Theme.Background)
	v.SetDefault("theme.card", d.Theme.Card)
	v.SetDefault("theme.accent", d.Theme.Accent)
	v.SetDefault("theme.text", d.Theme.Text)
	v.SetDefault("theme.border", d.Theme.Border)
	v.SetDefault("theme.hover", d.Theme.Hover)
	v.SetDefault("theme.margin", d.Theme.Margin)
	v.SetDefault("theme.title_font_size", d.Theme.TitleFontSize)
	v.SetDefault("theme.series", d.Theme.Series)

	v.SetDefault("defaults.chart", d.Defaults.Chart)
	v.SetDefault("defaults.x", d.Defaults.X)
	v.SetDefault("defaults.y", d.Defaults.Y)
}
