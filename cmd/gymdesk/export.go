package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/application/document"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/config"
)

// exportTimeout bounds one headless export, browser start included.
const exportTimeout = 2 * time.Minute

type exportFlags struct {
	token string
	out   string
}

func newExportCmd(load func() (config.Config, error)) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a receipt or invoice as PDF",
	}
	cmd.PersistentFlags().StringVar(&flags.token, "token", "", "backend bearer token (required)")
	cmd.PersistentFlags().StringVar(&flags.out, "out", ".", "directory to write the PDF to")
	_ = cmd.MarkPersistentFlagRequired("token")

	cmd.AddCommand(&cobra.Command{
		Use:   "receipt <payment-id>",
		Short: "Export the receipt for a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, load, flags, document.KindReceipt, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "invoice <invoice-id>",
		Short: "Export an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, load, flags, document.KindInvoice, args[0])
		},
	})
	return cmd
}

func runExport(cmd *cobra.Command, load func() (config.Config, error), flags exportFlags, kind document.Kind, id string) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), exportTimeout)
	defer cancel()

	backend, err := newBackend(cfg, nil)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	browser := newBrowser(cfg)
	defer browser.Close()
	deps, err := newExportDeps(cfg, renderer, browser)
	if err != nil {
		return err
	}

	user, err := backend.Me(ctx, flags.token)
	if err != nil {
		return fmt.Errorf("load profile: %s", api.UserMessage(err))
	}

	var res orchestrators.ExportResult
	switch kind {
	case document.KindReceipt:
		p, err := backend.Payments.Get(ctx, flags.token, id)
		if err != nil {
			return fmt.Errorf("load payment %s: %s", id, api.UserMessage(err))
		}
		res, err = orchestrators.ExecuteExportReceipt(ctx, orchestrators.ExportReceiptInput{SessionKey: "cli", Payment: p, User: user}, deps)
		if err != nil {
			return err
		}
	case document.KindInvoice:
		inv, err := backend.Invoices.Get(ctx, flags.token, id)
		if err != nil {
			return fmt.Errorf("load invoice %s: %s", id, api.UserMessage(err))
		}
		res, err = orchestrators.ExecuteExportInvoice(ctx, orchestrators.ExportInvoiceInput{SessionKey: "cli", Invoice: inv, User: user}, deps)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(flags.out, 0o755); err != nil {
		return err
	}
	path := filepath.Join(flags.out, res.Filename)
	if err := os.WriteFile(path, res.PDF, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	printExportSummary(cmd, res, user.DisplayName(), path)
	return nil
}

// printExportSummary reports a written export. The amount is the one printed
// on the document, so it follows the configured display currency.
func printExportSummary(cmd *cobra.Command, res orchestrators.ExportResult, who, path string) {
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓"), titleStyle.Render(res.View.Title+" "+res.View.Key))
	line(cmd, "amount", res.View.Total)
	line(cmd, "for", who)
	line(cmd, "file", path)
	line(cmd, "size", fmt.Sprintf("%d KB", (len(res.PDF)+1023)/1024))
}
