package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"geomeasure/version"
)

var rootCmd = &cobra.Command{
	Use:   "geomeasure",
	Short: "Interactive map measurement tooling",
	Long: `geomeasure draws distance, area, curve and point measurements on map
views. All views share one data pool, so a measurement taken on one map
appears on every other connected view.`,
	Version: version.GetFullVersion(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
