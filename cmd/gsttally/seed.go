package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gsttally/internal/cache"
	"github.com/smallbiznis/gsttally/internal/masterdata"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	seedCmd.Flags().StringP("file", "f", "", "Path to the master-data TOML file")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load companies, item tax templates and items from a TOML file",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("--file is required")
	}

	f, err := masterdata.Load(path)
	if err != nil {
		return err
	}

	var (
		conn      *gorm.DB
		node      *snowflake.Node
		log       *zap.Logger
		rateCache taxdomain.RateCache
	)
	return runOnce(cmd.Context(), func(ctx context.Context) error {
		summary, err := masterdata.Seed(ctx, conn, node, f, log)
		if err != nil {
			return err
		}
		rateCache.Invalidate(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "companies=%d templates_created=%d templates_updated=%d items=%d\n",
			summary.Companies, summary.TemplatesCreated, summary.TemplatesUpdated, summary.Items)
		return nil
	}, infraModules(), cache.Module, fx.Populate(&conn, &node, &log, &rateCache))
}
