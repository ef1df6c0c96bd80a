package main

import (
	"fmt"
	"os"

	"genomed/internal/genomed/daemon"
)

func main() {
	if err := daemon.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
