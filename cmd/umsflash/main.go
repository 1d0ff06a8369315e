// Author @gajzzs
package main

import (
	"fmt"
	"os"

	"github.com/gajzzs/umsflash/internal/app"
)

var rootCmd = app.NewRootCommand()

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(
		app.NewPortsCommand(),
		app.NewPartitionsCommand(),
		app.NewStatusCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
