package main

import (
	"fmt"
	"os"

	"github.com/javiermolinar/vendas/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Config is loaded by the root command so --config can override the path.
	app := ui.NewApp(nil)
	defer func() { _ = app.Close() }()
	return app.Execute()
}
