package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Data     DataConfig
	Database DatabaseConfig
	Scene    SceneConfig
	Sim      SimConfig
	UI       UIConfig
	Logging  LoggingConfig
}

// DataConfig points at the CSV datasets.
type DataConfig struct {
	Dir        string
	ZonesFile  string `mapstructure:"zones_file"`
	BudgetFile string `mapstructure:"budget_file"`
	Watch      bool
}

// DatabaseConfig holds sqlite settings for plan snapshots.
type DatabaseConfig struct {
	Path string
}

// SceneConfig tunes the display pool and visibility debounce.
type SceneConfig struct {
	PoolCapacity    int     `mapstructure:"pool_capacity"`
	Margin          float64 `mapstructure:"margin"`
	ScrollThreshold float64 `mapstructure:"scroll_threshold"`
	MinIntervalMS   int     `mapstructure:"min_interval_ms"`
}

// SimConfig holds impact-projection defaults.
type SimConfig struct {
	DefaultYears int `mapstructure:"default_years"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DoubleClickMS int `mapstructure:"double_click_ms"`
}

// LoggingConfig controls the append-only debug log.
type LoggingConfig struct {
	Debug bool
	Path  string
}

// Load reads configuration from file and env. Env var overrides use
// prefix CIVISCOPE_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	dataDir := filepath.Join(home, ".local", "share", "civiscope")

	// default values
	v.SetDefault("data.dir", dataDir)
	v.SetDefault("data.zones_file", "zones.csv")
	v.SetDefault("data.budget_file", "budget.csv")
	v.SetDefault("data.watch", true)
	v.SetDefault("database.path", filepath.Join(dataDir, "civiscope.db"))
	v.SetDefault("scene.pool_capacity", 32)
	v.SetDefault("scene.margin", 4.0)
	v.SetDefault("scene.scroll_threshold", 2.0)
	v.SetDefault("scene.min_interval_ms", 120)
	v.SetDefault("sim.default_years", 5)
	v.SetDefault("ui.double_click_ms", 400)
	v.SetDefault("logging.debug", false)
	v.SetDefault("logging.path", filepath.Join(dataDir, "civiscope.log"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CIVISCOPE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "civiscope"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CIVISCOPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return normalize(c), nil
}

// normalize clamps out-of-range knobs back to usable values rather
// than failing startup over a bad config file.
func normalize(c Config) Config {
	if c.Scene.PoolCapacity < 1 {
		c.Scene.PoolCapacity = 32
	}
	if c.Scene.Margin < 0 {
		c.Scene.Margin = 0
	}
	if c.Scene.ScrollThreshold < 0 {
		c.Scene.ScrollThreshold = 0
	}
	if c.Scene.MinIntervalMS < 0 {
		c.Scene.MinIntervalMS = 0
	}
	if c.Sim.DefaultYears < 1 {
		c.Sim.DefaultYears = 5
	}
	if c.UI.DoubleClickMS < 1 {
		c.UI.DoubleClickMS = 400
	}
	return c
}

// ZonesPath returns the absolute path of the zones CSV.
func (c Config) ZonesPath() string {
	return filepath.Join(c.Data.Dir, c.Data.ZonesFile)
}

// BudgetPath returns the absolute path of the budget CSV.
func (c Config) BudgetPath() string {
	return filepath.Join(c.Data.Dir, c.Data.BudgetFile)
}
