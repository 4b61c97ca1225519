// Package cli implements the subfile command-line interface using Cobra.
// Each subcommand maps to one top-level capability: serving local files,
// publishing a new manifest, or downloading one.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "subfile",
	Short: "subfile — chunked, verified file exchange over a content store",
	Long: `subfile publishes, serves, and downloads large files split into
content-addressed chunks, with ranged HTTP transfer and per-chunk
integrity verification.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// version is the release version reported by /version and --version.
var version = "dev"

// Execute runs the root command. Called from main.go.
func Execute(v string) {
	version = v
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
