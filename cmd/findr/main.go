package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/harrison/findr/internal/cmd"
)

func main() {
	// SIGINT cancels the walk via context; results already printed stay
	// printed since matches are streamed as found.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
