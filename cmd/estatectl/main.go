// Command estatectl is the operator tool: it validates configuration and
// reads the backend through the same gateway the web server uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"estatedesk.app/internal/config"
	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/gateway"
	"estatedesk.app/internal/pages"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "estatectl",
		Short:         "EstateDesk operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "overall deadline for backend calls")

	rootCmd.AddCommand(configCmd(), listCmd(), smokeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect configuration"}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load configuration and print warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "api:         %s\n", cfg.APIBaseURL)
			fmt.Fprintf(out, "maintenance: %s\n", cfg.MaintenancePath)
			fmt.Fprintf(out, "listen:      %s\n", cfg.ListenAddr)
			fmt.Fprintf(out, "oidc:        %t\n", cfg.OIDCEnabled())
			store := "memory"
			if cfg.RedisURL != "" {
				store = "redis"
			}
			fmt.Fprintf(out, "sessions:    %s\n", store)
			for _, w := range cfg.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	})
	return cmd
}

func listCmd() *cobra.Command {
	names := make([]string, 0, len(estate.Resources))
	for _, r := range estate.Resources {
		names = append(names, string(r))
	}
	return &cobra.Command{
		Use:       "list <resource>",
		Short:     "Print a resource list as the web pages show it",
		Long:      "Resources: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, ok := estate.ParseResource(args[0])
			if !ok {
				return fmt.Errorf("unknown resource %q (want one of %s)", args[0], strings.Join(names, ", "))
			}
			ctrl, ctx, cancel, err := controller(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			l, err := ctrl.Load(ctx, res)
			if err != nil {
				return fmt.Errorf("load %s: %w", res, err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\t"+strings.Join(l.Columns, "\t"))
			for _, row := range l.Rows {
				fmt.Fprintf(tw, "%d\t%s\n", row.ID, strings.Join(row.Cells, "\t"))
			}
			return tw.Flush()
		},
	}
}

func smokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Load the dashboard and every list against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, ctx, cancel, err := controller(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			out := cmd.OutOrStdout()
			stats, err := ctrl.Dashboard(ctx)
			if err != nil {
				return fmt.Errorf("dashboard: %w", err)
			}
			for _, s := range stats {
				fmt.Fprintf(out, "%-20s %d\n", s.Label, s.Value)
			}
			for _, r := range estate.Resources {
				l, err := ctrl.Load(ctx, r)
				if err != nil {
					return fmt.Errorf("list %s: %w", r, err)
				}
				fmt.Fprintf(out, "%-20s %d rows\n", r.Title(), len(l.Rows))
			}
			fmt.Fprintln(out, "smoke: PASS")
			return nil
		},
	}
}

func controller(cmd *cobra.Command) (*pages.Controller, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	gw, err := gateway.New(gateway.Options{
		BaseURL:         cfg.APIBaseURL,
		MaintenancePath: cfg.MaintenancePath,
		Timeout:         cfg.APITimeout,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	ctx := cmd.Context()
	if token := os.Getenv("ESTATE_ACCESS_TOKEN"); token != "" {
		ctx = gateway.WithAccessToken(ctx, token)
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return pages.NewController(pages.FromGateway(gw)), ctx, cancel, nil
}
