package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewMigrateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := opts.openStores(cmd.Context())
			if err != nil {
				return err
			}
			if !opts.Migrate {
				if err := stores.Migrate(cmd.Context()); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			result := map[string]string{"driver": stores.Driver, "status": "migrated"}
			return opts.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s schema is up to date\n", stores.Driver)
				return err
			})
		},
	}
}
