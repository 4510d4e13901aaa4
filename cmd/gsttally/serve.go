package main

import (
	"github.com/smallbiznis/gsttally/internal/migration"
	"github.com/smallbiznis/gsttally/internal/ratelimit"
	"github.com/smallbiznis/gsttally/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			infraModules(),
			domainModules(),
			ratelimit.Module,
			migration.Module,
			server.Module,
		)
		app.Run()
		return app.Err()
	},
}
