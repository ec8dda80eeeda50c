package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			ready, err := apiClient.Ready(context.Background())
			if err != nil {
				return fmt.Errorf("API not ready: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(ready)
			}

			t := NewTable("CHECK", "STATE")
			for _, key := range []string{"status", "database", "locks"} {
				if v, ok := (*ready)[key]; ok {
					t.AddRow(key, formatStatus(v))
				}
			}
			t.Render()
			return nil
		},
	}
}
