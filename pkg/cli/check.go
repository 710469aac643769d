package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

// ErrCheckFailed is returned by check when the configuration has problems.
var ErrCheckFailed = errors.New("configuration check failed")

func newCheckCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report name conflicts and invalid option boxes in a stored configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(o.settings)
			if err != nil {
				return err
			}
			defer repo.Close()

			items, err := repo.Load(o.settings.Menu)
			if err != nil {
				return fmt.Errorf("failed to load menu %q: %w", o.settings.Menu, err)
			}

			out := cmd.OutOrStdout()
			store := menu.NewStore(items)
			findings := menu.Audit(store)
			for _, f := range findings {
				fmt.Fprintf(out, "%s\t%s\t%q\n", f.Code, menu.ParsePath(f.Path).Child(f.Label), f.Label)
			}
			if err := menu.CheckInvariants(store); err != nil {
				fmt.Fprintln(out, err)
				return ErrCheckFailed
			}
			if len(findings) > 0 {
				return fmt.Errorf("%d problem(s): %w", len(findings), ErrCheckFailed)
			}
			fmt.Fprintf(out, "%s: %d items ok\n", o.settings.Menu, store.Len())
			return nil
		},
	}
}
