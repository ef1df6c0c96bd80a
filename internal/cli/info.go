package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Show file metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	info, err := newClient().FileInfo(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name:      %s\n", info.Name)
	fmt.Printf("Extension: %s\n", info.Extension)
	fmt.Printf("Size:      %d bytes\n", info.Size)
	fmt.Printf("Modified:  %s\n", info.Modified.Format(time.RFC3339))
	return nil
}
