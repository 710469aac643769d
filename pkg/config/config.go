// Package config resolves menubuilder settings from a YAML file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MENUBUILDER_MENU.
	EnvPrefix = "MENUBUILDER"

	// EnvVarConfigPath points at the directory of menu configurations.
	EnvVarConfigPath = "MENUBUILDER_CONFIG_PATH"

	StorageJSON   = "json"
	StorageSQLite = "sqlite"

	DefaultMenu = "TempBar"
	DefaultPort = 9876
)

// Settings is the resolved configuration.
type Settings struct {
	MenuItemsDir string
	Menu         string
	Storage      string
	SQLitePath   string
	LogLevel     string
	Port         int
	RootLabel    string
	Layout       menu.Layout
}

// Load resolves settings. An empty cfgFile means
// $HOME/.config/menubuilder/config.yaml, which may be absent.
func Load(cfgFile string) (*Settings, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".local", "share", "menubuilder")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "menubuilder"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("menuitems_dir", filepath.Join(dataDir, "menuitems"))
	v.SetDefault("menu", DefaultMenu)
	v.SetDefault("storage", StorageJSON)
	v.SetDefault("sqlite_path", filepath.Join(dataDir, "menubuilder.db"))
	v.SetDefault("log_level", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("root_label", "")
	v.SetDefault("layout", string(menu.LayoutRooted))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	s := &Settings{
		MenuItemsDir: v.GetString("menuitems_dir"),
		Menu:         v.GetString("menu"),
		Storage:      strings.ToLower(v.GetString("storage")),
		SQLitePath:   v.GetString("sqlite_path"),
		LogLevel:     v.GetString("log_level"),
		Port:         v.GetInt("port"),
		RootLabel:    v.GetString("root_label"),
		Layout:       menu.Layout(strings.ToLower(v.GetString("layout"))),
	}
	if dir := os.Getenv(EnvVarConfigPath); dir != "" {
		s.MenuItemsDir = dir
	}
	return s, s.Validate()
}

// Validate checks enumerated settings.
func (s *Settings) Validate() error {
	switch s.Storage {
	case StorageJSON, StorageSQLite:
	default:
		return fmt.Errorf("unsupported storage %q", s.Storage)
	}
	switch s.Layout {
	case menu.LayoutRooted, menu.LayoutMenubar:
	default:
		return fmt.Errorf("unsupported layout %q", s.Layout)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if strings.TrimSpace(s.Menu) == "" {
		return errors.New("menu name is required")
	}
	return nil
}
