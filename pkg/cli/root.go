// Package cli implements the menubuilder command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mchmarny/menubuilder/pkg/config"
	"github.com/mchmarny/menubuilder/pkg/controller"
	"github.com/mchmarny/menubuilder/pkg/host"
	"github.com/mchmarny/menubuilder/pkg/logger"
	"github.com/mchmarny/menubuilder/pkg/menu"
	"github.com/mchmarny/menubuilder/pkg/storage"
)

const appName = "menubuilder"

// BuildInfo is stamped at build time via -ldflags.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// options holds the persistent flags and the settings they resolve to.
type options struct {
	cfgFile  string
	logLevel string
	menu     string
	dir      string
	settings *config.Settings
	info     BuildInfo
}

// NewRootCmd returns the menubuilder root command with every subcommand attached.
func NewRootCmd(info BuildInfo) *cobra.Command {
	o := &options{info: info}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Build host application menus from a flat list of menu items",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return o.resolve()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "Config file (default $HOME/.config/menubuilder/config.yaml)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVarP(&o.menu, "menu", "m", "", "Name of the menu configuration")
	flags.StringVar(&o.dir, "dir", "", "Directory of JSON menu configurations")

	cmd.AddCommand(
		newServeCmd(o),
		newTreeCmd(o),
		newBuildCmd(o),
		newCheckCmd(o),
		newExportCmd(o),
		newVersionCmd(o),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute(info BuildInfo) int {
	if err := NewRootCmd(info).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// resolve loads settings and sets up the default logger.
func (o *options) resolve() error {
	s, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}
	if o.menu != "" {
		s.Menu = strings.TrimSpace(o.menu)
	}
	if o.dir != "" {
		s.MenuItemsDir = o.dir
	}

	level := o.logLevel
	if level == "" {
		level = s.LogLevel
	}
	logger.SetDefaultLogger(appName, o.info.Version, level)

	o.settings = s
	return nil
}

func openRepository(s *config.Settings) (storage.Repository, error) {
	switch s.Storage {
	case config.StorageSQLite:
		return storage.NewSQLiteRepository(s.SQLitePath)
	default:
		return storage.NewFileRepository(s.MenuItemsDir), nil
	}
}

// session is an opened repository with a controller building into h.
type session struct {
	repo storage.Repository
	ctrl *controller.Controller
}

func (s *session) Close() error {
	return s.repo.Close()
}

// open loads the configured menu. A missing configuration is an error unless
// allowMissing is set, in which case the session starts empty.
func (o *options) open(h menu.Host, allowMissing bool) (*session, error) {
	repo, err := openRepository(o.settings)
	if err != nil {
		return nil, err
	}

	engine := menu.NewEngine(h, &host.Registry{},
		menu.WithLayout(o.settings.Layout),
		menu.WithRootLabel(o.settings.RootLabel))
	ctrl := controller.New(repo, engine,
		controller.WithLayout(o.settings.Layout),
		controller.WithLogger(slog.Default()))

	if err := ctrl.Load(o.settings.Menu); err != nil {
		if !allowMissing || !errors.Is(err, storage.ErrNotFound) {
			repo.Close()
			return nil, fmt.Errorf("failed to load menu %q: %w", o.settings.Menu, err)
		}
	}
	return &session{repo: repo, ctrl: ctrl}, nil
}
