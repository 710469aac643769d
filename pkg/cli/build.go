package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mchmarny/menubuilder/pkg/host"
)

func newBuildCmd(o *options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a menu configuration and print the host calls",
		Long: `Build a menu configuration against an offline host.

By default every host call is printed in order. With --json the materialized
menus are printed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if jsonOutput {
				menus := host.NewTree()
				sess, err := o.open(menus, false)
				if err != nil {
					return err
				}
				defer sess.Close()

				sess.ctrl.Build()
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(menus.Menus())
			}

			rec := &host.Recorder{}
			sess, err := o.open(rec, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.ctrl.Build()
			for _, call := range rec.Calls {
				if _, err := fmt.Fprintln(out, call); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the materialized menus as JSON")
	return cmd
}
