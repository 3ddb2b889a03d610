package main

import (
	"fmt"

	"github.com/benoitkugler/svgmerge/svgmerge"
	"github.com/spf13/cobra"
)

// Version information - these can be set during build with ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "svgmerge %s (commit %s)\n", Version, GitCommit)
		fmt.Fprintf(out, "layout format %s\n", svgmerge.LayoutVersion)
	},
}
