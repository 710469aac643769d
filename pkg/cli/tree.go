package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mchmarny/menubuilder/pkg/host"
)

func newTreeCmd(o *options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the displayed hierarchy of a menu configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := o.open(&host.Recorder{}, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sess.ctrl.View())
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), sess.ctrl.Tree().String())
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the hierarchy as JSON")
	return cmd
}
