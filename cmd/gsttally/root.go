package main

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gsttally/internal/cache"
	"github.com/smallbiznis/gsttally/internal/clock"
	"github.com/smallbiznis/gsttally/internal/compliance"
	"github.com/smallbiznis/gsttally/internal/config"
	"github.com/smallbiznis/gsttally/internal/gst"
	"github.com/smallbiznis/gsttally/internal/jurisdiction"
	"github.com/smallbiznis/gsttally/internal/observability"
	"github.com/smallbiznis/gsttally/internal/tax"
	"github.com/smallbiznis/gsttally/pkg/db"
	"github.com/smallbiznis/gsttally/pkg/redisclient"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const lifecycleTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "gsttally",
	Short: "Tally-compatible GST calculation for sales invoices",
	Long: `gsttally recomputes GST on Sales Invoices and Credit Notes with per-line
rounding, so document totals match what Tally books for the same invoice.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(validateCmd)
}

// infraModules wires configuration, logging, the database and redis.
func infraModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		redisclient.Module,
	)
}

// domainModules wires the hooks and everything they depend on.
func domainModules() fx.Option {
	return fx.Options(
		clock.Module,
		cache.Module,
		tax.Module,
		jurisdiction.Module,
		gst.Module,
		compliance.Module,
	)
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// runOnce starts an app, runs fn against the populated dependencies and stops it.
func runOnce(ctx context.Context, fn func(context.Context) error, opts ...fx.Option) error {
	app := fx.New(append([]fx.Option{fx.NopLogger}, opts...)...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, lifecycleTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(ctx)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
