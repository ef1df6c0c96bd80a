package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>",
		Short: "Print a line whenever the file changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Watching %s (Ctrl+C to exit)\n", path)

	err := newClient().Watch(ctx, path, func() {
		fmt.Printf("[%s] changed: %s\n", time.Now().Format("15:04:05"), path)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
