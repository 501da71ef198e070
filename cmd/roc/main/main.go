package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/roc/cmd/roc"
	"github.com/arthur-debert/roc/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := roc.NewApp()
	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		printer := style.NewPrinter(os.Stderr)
		fmt.Fprintln(os.Stderr, printer.Render("Error", fmt.Sprintf("Error: %v", err)))
		stop()
		os.Exit(1)
	}
}
