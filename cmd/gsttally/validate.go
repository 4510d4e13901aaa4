package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	compliancedomain "github.com/smallbiznis/gsttally/internal/compliance/domain"
	gstdomain "github.com/smallbiznis/gsttally/internal/gst/domain"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func init() {
	validateCmd.Flags().StringP("method", "m", "validate", "Hook method name passed to the hooks")
	validateCmd.Flags().Bool("before-submit", false, "Also run the before-submit check")
}

var validateCmd = &cobra.Command{
	Use:   "validate INVOICE_JSON",
	Short: "Run the GST hooks against a document file and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	method, _ := cmd.Flags().GetString("method")
	beforeSubmit, _ := cmd.Flags().GetBool("before-submit")

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var doc sidomain.SalesInvoice
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	doc.ResetProcessingState()

	var (
		svc      gstdomain.Service
		provider compliancedomain.Provider
	)
	return runOnce(cmd.Context(), func(ctx context.Context) error {
		path, err := svc.OnValidate(ctx, &doc, method)
		if err != nil {
			return err
		}
		if err := compliancedomain.Run(ctx, provider, &doc, method); err != nil {
			return err
		}
		if beforeSubmit {
			if err := svc.OnBeforeSubmit(ctx, &doc, method); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"path":     path,
			"document": &doc,
		})
	}, infraModules(), domainModules(), fx.Populate(&svc, &provider))
}
