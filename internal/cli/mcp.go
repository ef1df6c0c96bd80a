package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage the embedded MCP server",
	}

	var wait time.Duration
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if wait > 0 {
				if err := c.WaitForDaemon(context.Background(), wait); err != nil {
					return err
				}
			}
			result, err := c.MCPStart(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("%s (http: %d, ws: %d)\n", result.Message, result.HTTPPort, result.WSPort)
			return nil
		},
	}
	startCmd.Flags().DurationVar(&wait, "wait", 0,
		"Wait up to this long for the daemon to answer before starting")
	cmd.AddCommand(startCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := newClient().MCPStop(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(message)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show MCP server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := newClient().MCPStatus(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", status.State)
			if status.IsRunning {
				fmt.Printf("HTTP port:      %d\n", status.HTTPPort)
				fmt.Printf("WebSocket port: %d\n", status.WSPort)
			}
			return nil
		},
	})

	return cmd
}
