package main

import (
	"fmt"
	"os"

	app "github.com/valter-silva-au/todo-list/internal"
	"github.com/valter-silva-au/todo-list/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing todo: %v\n", err)
		os.Exit(1)
	}

	runErr := cli.Execute()
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving tasks: %v\n", err)
		if runErr == nil {
			os.Exit(1)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
