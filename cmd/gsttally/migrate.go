package main

import (
	"context"
	"fmt"

	"github.com/smallbiznis/gsttally/internal/config"
	"github.com/smallbiznis/gsttally/internal/migration"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the master-data tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			conn *gorm.DB
			cfg  config.Config
		)
		return runOnce(cmd.Context(), func(context.Context) error {
			if err := migration.Run(conn, cfg.DBType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.DBType)
			return nil
		}, infraModules(), fx.Populate(&conn, &cfg))
	},
}
