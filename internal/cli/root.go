// Package cli implements kpictl, the command line client of the KPI dashboard.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/godilite/kpi-server/internal/config"
)

// NewRootCmd builds the kpictl command tree. Flag defaults come from cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "kpictl",
		Short: "Import KPI sheet exports and query the KPI dashboard",
		Long: `kpictl loads CSV exports of the daily, CSAT and monthly KPI sheets into
the dashboard database and queries a running kpi-server over gRPC.

Examples:
  kpictl import --daily day.csv --csat csat.csv --monthly month.csv
  kpictl top --week 42
  kpictl week 1070 42
  kpictl day 1070 2025-10-13
  kpictl month 1070 October`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("addr", fmt.Sprintf("localhost:%d", cfg.GRPCPort), "kpi-server gRPC address")
	root.PersistentFlags().Duration("timeout", 5*time.Second, "Request timeout")

	root.AddCommand(
		newImportCmd(cfg),
		newTopCmd(),
		newWeekCmd(),
		newDayCmd(),
		newMonthCmd(),
		newPeriodsCmd(),
	)
	return root
}

// Execute runs kpictl with the process environment and arguments.
func Execute() int {
	_ = godotenv.Load(".env")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "kpictl:", err)
		return 1
	}

	if err := NewRootCmd(cfg).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}
