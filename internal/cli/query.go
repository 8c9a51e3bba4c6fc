package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	handler "github.com/godilite/kpi-server/internal/grpc"
)

type call func(c *handler.KPIDashboardClient, ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

// runQuery dials the server named by --addr, performs one call and renders
// the response.
func runQuery(cmd *cobra.Command, fn call, req map[string]any, render func(io.Writer, *structpb.Struct)) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	in, err := structpb.NewStruct(req)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutOrDefault(timeout))
	defer cancel()

	resp, err := fn(handler.NewKPIDashboardClient(conn), ctx, in)
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return fmt.Errorf("%s: %s", st.Code(), st.Message())
		}
		return err
	}

	render(cmd.OutOrStdout(), resp)
	return nil
}

func newTopCmd() *cobra.Command {
	var (
		week  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank the top performers of a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if week != "" {
				req["week"] = week
			}
			if limit > 0 {
				req["limit"] = limit
			}
			return runQuery(cmd, (*handler.KPIDashboardClient).GetTopPerformers, req, renderTopPerformers)
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "Week number (defaults to the current ISO week)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of performers (defaults to the server setting)")
	return cmd
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week <emp-id> <week>",
		Short: "Show an employee's weekly summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"employee_id": args[0], "week": args[1]}
			return runQuery(cmd, (*handler.KPIDashboardClient).GetWeeklySummary, req, renderWeeklySummary)
		},
	}
}

func newDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day <emp-id> <date>",
		Short: "Show an employee's metrics for one day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"employee_id": args[0], "date": args[1]}
			return runQuery(cmd, (*handler.KPIDashboardClient).GetDailySummary, req, renderDailySummary)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month <emp-id> <month>",
		Short: "Show an employee's monthly KPI report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"employee_id": args[0], "month": args[1]}
			return runQuery(cmd, (*handler.KPIDashboardClient).GetMonthlySummary, req, renderMonthlySummary)
		},
	}
}

func newPeriodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the weeks, dates and months with data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, (*handler.KPIDashboardClient).ListPeriods, map[string]any{}, renderPeriods)
		},
	}
}

// timeoutOrDefault keeps zero and negative --timeout values usable.
func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Second
	}
	return d
}
