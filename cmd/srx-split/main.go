// Command srx-split splits text into sentences using SRX segmentation rules.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/jamesainslie/go-srx/internal/cli"
)

// Set by ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewSplitCommand()
	cmd.Annotations = map[string]string{"built": date}
	if err := fang.Execute(ctx, cmd, fang.WithVersion(version), fang.WithCommit(commit)); err != nil {
		stop()
		os.Exit(1)
	}
}
