package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Inspect provider configurations",
	}

	cmd.AddCommand(newProviderListCmd())

	return cmd
}

func newProviderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			providers, err := apiClient.Providers().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list providers: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(providers)
			}

			t := NewTable("ID", "NAME", "STATUS", "METHOD", "TIMEOUT", "API KEY", "URL")
			for _, p := range providers {
				timeout := "default"
				if p.TimeoutMS > 0 {
					timeout = (time.Duration(p.TimeoutMS) * time.Millisecond).String()
				}
				key := "missing"
				if p.HasAPIKey {
					key = "set"
				}
				t.AddRow(
					strconv.FormatInt(p.ID, 10),
					p.Name,
					formatStatus(p.Status),
					p.HTTPMethod,
					timeout,
					key,
					truncate(p.APIURL, 48),
				)
			}
			t.Render()
			return nil
		},
	}
}
