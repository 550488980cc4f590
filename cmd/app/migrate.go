package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update the database schema.

With --reset every table is dropped first. All data is lost.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := setup(rootOpts.ConfigPath)
			if err != nil {
				return err
			}

			if reset {
				if err = dao.DropTables(db); err != nil {
					return fmt.Errorf("dao.DropTables -> %w", err)
				}
				if err = dao.InitTables(db); err != nil {
					return fmt.Errorf("dao.InitTables -> %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop all tables before migrating")

	return cmd
}
