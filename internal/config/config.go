// Package config loads bookkeeper settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/consumption"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/presenter"
	"github.com/spf13/viper"
)

// DefaultDatabasePath is used when database.path is not set.
const DefaultDatabasePath = "$HOME/.local/share/bookkeeper/bookkeeper.db"

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Seed         presenter.Seed
	Windows      consumption.Windows
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	windows := consumption.DefaultWindows()
	seed := presenter.DefaultSeed()

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("windows.day", windows.Day)
	v.SetDefault("windows.week", windows.Week)
	v.SetDefault("windows.month", windows.Month)
	v.SetDefault("seed.categories", seed.Outline)
	for _, p := range model.Periods() {
		v.SetDefault("seed.budgets."+p.Label(), seed.Budgets[p])
	}
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		Windows: consumption.Windows{
			Day:   v.GetDuration("windows.day"),
			Week:  v.GetDuration("windows.week"),
			Month: v.GetDuration("windows.month"),
		},
		Seed: presenter.Seed{
			Outline: v.GetString("seed.categories"),
			Budgets: make(map[model.Period]int64, len(model.Periods())),
		},
	}

	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return cfg, fmt.Errorf("%w: database.path is empty", common.ErrInvalidConfig)
	}
	if err := cfg.Windows.Validate(); err != nil {
		return cfg, err
	}

	for _, p := range model.Periods() {
		key := "seed.budgets." + p.Label()
		total := v.GetInt64(key)
		if total < 0 {
			return cfg, fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, key)
		}
		cfg.Seed.Budgets[p] = total
	}

	return cfg, nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}
