package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"genomed/pkg/client"
	"genomed/pkg/config"
)

var serverAddr string

var rootCmd = &cobra.Command{
	Use:   "genomectl",
	Short: "genomed control client",
	Long:  "Command line client for the genomed daemon: stream genome files, inspect file metadata, and manage the embedded MCP server.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultAddr := fmt.Sprintf("%s:%d", config.DefaultConfig.Server.Address, config.DefaultConfig.Server.Port)

	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", defaultAddr,
		"Daemon address in format host:port")

	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newStreamCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newMCPCmd())
}

func newClient() *client.Client {
	return client.New(serverAddr)
}
