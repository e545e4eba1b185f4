package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"seatmap-cli/config"
	"seatmap-cli/logger"
	"seatmap-cli/service"
	"seatmap-cli/store"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Load a floor plan and print its metadata",
		Long:  `Decode a floor plan from a local path or an http(s) URL and show its format and pixel size.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			source := cfg.Background
			if len(args) > 0 {
				source = args[0]
			}
			if strings.TrimSpace(source) == "" {
				return errNoSource
			}

			log := logger.Stderr(cfg.LogLevel).WithComponent("inspect")
			client := service.NewClient(&http.Client{Timeout: cfg.HTTPTimeout})
			fp, err := client.Load(context.Background(), source)
			if err != nil {
				log.WithError(err).Debug("floor plan load failed", slog.String("source", source))
				if service.IsNotFound(err) {
					return fmt.Errorf("floor plan not found: %s", source)
				}
				return err
			}
			log.Debug("floor plan decoded", slog.String("source", source), slog.String("format", fp.Plan.Format))
			renderFloorPlan(cmd.OutOrStdout(), fp.Plan)
			return nil
		},
	}
}

func newRecentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently opened floor plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := store.LoadRecentFloorPlans()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintln(out, "No recent floor plans.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"#", "Name", "Size", "Source"})
			for i, plan := range plans {
				size := ""
				if plan.Width > 0 && plan.Height > 0 {
					size = fmt.Sprintf("%dx%d", plan.Width, plan.Height)
				}
				t.AppendRow(table.Row{i + 1, plan.Name, size, plan.Source})
			}
			t.Render()
			return nil
		},
	}
}
