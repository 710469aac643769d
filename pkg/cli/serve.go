package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mchmarny/menubuilder/pkg/host"
	"github.com/mchmarny/menubuilder/pkg/server"
)

func newServeCmd(o *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing API and the built menu over HTTP",
		Long: `Load the menu configuration, build it once and serve the editing API.

The built menu is available at GET /menu and is rebuilt by POST /build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				o.settings.Port = port
			}
			slog.Info("starting menubuilder",
				"commit", o.info.Commit,
				"date", o.info.Date,
				"menu", o.settings.Menu,
				"storage", o.settings.Storage)

			menus := host.NewTree()
			sess, err := o.open(menus, true)
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.ctrl.Build()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, server.New(
				server.WithPort(o.settings.Port),
				server.WithSimpleHealth(),
				server.WithEditor(sess.ctrl, menus.Handler()),
			))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}

func run(ctx context.Context, srv server.Server) error {
	if err := srv.Serve(ctx); err != nil {
		slog.Error("server error", "error", err)
		return err
	}
	return nil
}
