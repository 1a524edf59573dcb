package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/utkarsh5026/threadpool/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, err := cli.NewRootCommand(os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
