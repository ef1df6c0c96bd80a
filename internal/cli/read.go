package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <path>",
		Short: "Read an entire file through the daemon",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
}

func runRead(cmd *cobra.Command, args []string) error {
	data, err := newClient().ReadWhole(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Print(data)
	return nil
}
