package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, doc string) (Config, error) {
	t.Helper()

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadYAML(t, "")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/bookkeeper/bookkeeper.db"), cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.Windows.Day)
	assert.Equal(t, 30*24*time.Hour, cfg.Windows.Month)
	assert.Equal(t, int64(7000), cfg.Seed.Budgets[model.Week])
	assert.Contains(t, cfg.Seed.Outline, "meat products")
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := loadYAML(t, `
database:
  path: /tmp/ledger.db
logging:
  level: debug
  format: json
windows:
  day: 12h
  week: 72h
  month: 336h
seed:
  categories: |
    home
      rent
  budgets:
    day: 50
    week: 300
    month: 1200
`)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ledger.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 12*time.Hour, cfg.Windows.Day)
	assert.Equal(t, 72*time.Hour, cfg.Windows.Week)
	assert.Equal(t, int64(1200), cfg.Seed.Budgets[model.Month])
	assert.Equal(t, "home\n  rent\n", cfg.Seed.Outline)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := loadYAML(t, "windows:\n  day: 0s\n")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = loadYAML(t, "seed:\n  budgets:\n    week: -10\n")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = loadYAML(t, "database:\n  path: \"\"\n")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("BOOKKEEPER_TEST_DIR", "/srv/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "books.db"), ExpandPath("~/books.db"))
	assert.Equal(t, "/srv/data/books.db", ExpandPath("$BOOKKEEPER_TEST_DIR/books.db"))
	assert.Equal(t, "/abs/books.db", ExpandPath("/abs/books.db"))
}
