package main

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"gymdesk/internal/adapters/storage"
	"gymdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var (
	accent = lipgloss.Color("#D97706")
	dim    = lipgloss.Color("#6B7280")
	green  = lipgloss.Color("#22C55E")
	red    = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle = lipgloss.NewStyle().Foreground(dim).Width(10)
	okStyle    = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(red).Bold(true)
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "gymdesk",
		Short:         "Gym management front end",
		Long:          "gymdesk serves the gym's role dashboards and exports receipts and invoices as PDF.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to gymdesk.yaml")

	load := func() (config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		slog.SetDefault(cfg.NewLogger())
		return cfg, nil
	}

	cmd.AddCommand(newServeCmd(load))
	cmd.AddCommand(newExportCmd(load))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (schema %d)\n", titleStyle.Render("gymdesk"), version, storage.LatestSchemaVersion())
		},
	}
}

// line prints one "label value" row.
func line(cmd *cobra.Command, label, value string) {
	fmt.Fprintln(cmd.OutOrStdout(), labelStyle.Render(label), value)
}
