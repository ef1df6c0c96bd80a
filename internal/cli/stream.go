package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"genomed/internal/genomed/stream"
	"genomed/pkg/client"
)

type streamCmdParams struct {
	chunkSize int
	progress  bool
}

var streamParams = &streamCmdParams{}

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream <path>",
		Short: "Stream a file line by line",
		Args:  cobra.ExactArgs(1),
		RunE:  runStream,
	}

	cmd.Flags().IntVarP(&streamParams.chunkSize, "chunk-size", "c", 0, "Read chunk size in bytes (0 = daemon default)")
	cmd.Flags().BoolVarP(&streamParams.progress, "progress", "p", false, "Print progress events to stderr")

	return cmd
}

func runStream(cmd *cobra.Command, args []string) error {
	path := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nClosing stream...")
		cancel()
	}()

	return newClient().Stream(ctx, path, streamParams.chunkSize, func(ev client.StreamEvent) error {
		switch ev.Type {
		case stream.EventLines:
			for _, line := range ev.Batch.Lines {
				fmt.Println(line)
			}
		case stream.EventProgress:
			if streamParams.progress {
				fmt.Fprintf(os.Stderr, "progress: %d%% (%d/%d bytes)\n",
					ev.Progress.Percent, ev.Progress.TotalRead, ev.Progress.FileSize)
			}
		case stream.EventComplete:
			fmt.Fprintf(os.Stderr, "done: %d lines, %d bytes\n", ev.Done.TotalLines, ev.Done.TotalBytes)
		case stream.EventError:
			return fmt.Errorf("stream failed: %s", ev.Err)
		}
		return nil
	})
}
