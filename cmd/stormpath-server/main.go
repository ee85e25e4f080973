// Package main is the entry point for the stormpath-server command.
package main

import (
	"os"

	"github.com/dmitrymomot/stormpath/cmd/stormpath-server/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
