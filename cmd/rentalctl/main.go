// rentalctl - movie rental database helper
//
// A small Go CLI that provisions the movies, customers and rentals tables
// and runs one insert, show, update or remove command against them.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/rentalctl/rentalctl-go/internal/cli"
)

// Version information (set via ldflags at build time)
var (
	version   = "dev"     //nolint:unused // Set via ldflags
	buildTime = "unknown" //nolint:unused // Set via ldflags
)

func main() {
	if err := cli.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		_, _ = errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
