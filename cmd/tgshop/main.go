package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "tgshop",
		Usage: "storefront backend and launcher bot for a Telegram mini app",
		Commands: []*cli.Command{
			serveCommand(),
			botCommand(),
			runCommand(),
			signCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tgshop: %v\n", err)
		os.Exit(1)
	}
}
