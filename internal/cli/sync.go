package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/smmpanel/pkg/client"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize orders with provider APIs",
	}

	cmd.AddCommand(newSyncRunCmd())
	cmd.AddCommand(newSyncOrderCmd())
	cmd.AddCommand(newSyncTriggerCmd())
	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncLogsCmd())

	return cmd
}

func newSyncRunCmd() *cobra.Command {
	var (
		orderIDs   []int64
		all        bool
		providerID int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sync selected orders, or every eligible order with --all",
		Example: `  smmpanel sync run --orders 42,43
  smmpanel sync run --all --provider 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(orderIDs) == 0 {
				return fmt.Errorf("pass --orders or --all")
			}

			req := client.SyncRequest{OrderIDs: orderIDs, SyncAll: all}
			if providerID > 0 {
				req.ProviderID = &providerID
			}

			resp, err := apiClient.Sync().Run(context.Background(), req)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			return printSyncResponse(resp)
		},
	}

	cmd.Flags().Int64SliceVar(&orderIDs, "orders", nil, "order ids to sync")
	cmd.Flags().BoolVar(&all, "all", false, "sync every eligible order")
	cmd.Flags().Int64Var(&providerID, "provider", 0, "only orders fulfilled by this provider")

	return cmd
}

func newSyncOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <id>",
		Short: "Sync a single order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid order id: %s", args[0])
			}

			resp, err := apiClient.Sync().Order(context.Background(), id)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			return printSyncResponse(resp)
		},
	}
}

func newSyncTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Run the scheduled sync-all pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Sync().Trigger(context.Background())
			if err != nil {
				return fmt.Errorf("trigger failed: %w", err)
			}
			return printSyncResponse(resp)
		},
	}
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the scheduler state",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := apiClient.Sync().Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(status)
			}

			state := "stopped"
			if status.Started {
				state = "running"
			}
			if status.InFlight {
				state += " (sync in flight)"
			}
			fmt.Printf("Scheduler:  %s\n", state)
			fmt.Printf("Schedule:   %s\n", status.Schedule)
			if status.NextRun != nil {
				fmt.Printf("Next run:   %s\n", status.NextRun.Local().Format("2006-01-02 15:04:05"))
			}
			if status.LastRunAt == nil {
				fmt.Println("Last run:   never")
				return nil
			}
			fmt.Printf("Last run:   %s (%s)\n", status.LastRunAt.Local().Format("2006-01-02 15:04:05"), status.LastDuration)
			fmt.Printf("Result:     %d synced, %d failed, %d skipped\n", status.LastSynced, status.LastFailed, status.LastSkipped)
			if status.LastError != "" {
				fmt.Printf("Error:      %s\n", status.LastError)
			}
			if status.SkippedTicks > 0 {
				fmt.Printf("Overlapped: %d ticks skipped\n", status.SkippedTicks)
			}
			return nil
		},
	}
}

func newSyncLogsCmd() *cobra.Command {
	var (
		orderID    int64
		providerID int64
		filter     client.SyncLogFilter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List sync log entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if orderID > 0 {
				filter.OrderID = &orderID
			}
			if providerID > 0 {
				filter.ProviderID = &providerID
			}

			page, err := apiClient.Sync().Logs(context.Background(), &filter)
			if err != nil {
				return fmt.Errorf("failed to list sync logs: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(page)
			}

			t := NewTable("ID", "TIME", "ORDER", "PROVIDER", "ACTION", "STATUS", "MESSAGE")
			for _, e := range page.Data {
				provider := "-"
				if e.ProviderID != nil {
					provider = strconv.FormatInt(*e.ProviderID, 10)
				}
				t.AddRow(
					strconv.FormatInt(e.ID, 10),
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.FormatInt(e.OrderID, 10),
					provider,
					e.Action,
					formatStatus(e.Status),
					truncate(e.Message, 60),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d entries)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	cmd.Flags().Int64Var(&orderID, "order", 0, "filter by order id")
	cmd.Flags().Int64Var(&providerID, "provider", 0, "filter by provider id")
	cmd.Flags().StringVar(&filter.Action, "action", "", "filter by action: manual_sync, cron_sync")
	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by outcome: success, failed")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&filter.PageSize, "page-size", 20, "entries per page")

	return cmd
}

func printSyncResponse(resp *client.SyncResponse) error {
	if getOutputFormat() != "table" {
		return printOutput(resp)
	}

	if len(resp.Results) > 0 {
		t := NewTable("ORDER", "OUTCOME", "STATUS", "REMAINS", "DETAIL")
		for _, r := range resp.Results {
			status := r.Status
			if r.PreviousStatus != "" && r.Status != "" && r.PreviousStatus != r.Status {
				status = r.PreviousStatus + " -> " + r.Status
			}
			remains := "-"
			if r.Remains != nil {
				remains = strconv.FormatInt(*r.Remains, 10)
			}
			t.AddRow(
				strconv.FormatInt(r.OrderID, 10),
				formatStatus(r.Outcome),
				status,
				remains,
				truncate(r.Reason, 60),
			)
		}
		t.Render()
		fmt.Println()
	}

	fmt.Printf("%s: %d synced, %d failed, %d skipped of %d checked in %dms\n",
		resp.Action, resp.Synced, resp.Failed, resp.Skipped, resp.TotalChecked, resp.DurationMS)
	if len(resp.Errors) > 0 {
		fmt.Println("\nErrors:")
		fmt.Println("  " + strings.Join(resp.Errors, "\n  "))
	}
	return nil
}
