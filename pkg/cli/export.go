package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mchmarny/menubuilder/pkg/host"
	"github.com/mchmarny/menubuilder/pkg/storage"
)

func newExportCmd(o *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a normalized menu configuration as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.open(&host.Recorder{}, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			items := sess.ctrl.Items()
			out := cmd.OutOrStdout()
			switch format {
			case "yaml", "yml":
				return storage.ExportYAML(out, items)
			case "json":
				data, err := storage.Encode(items)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}
