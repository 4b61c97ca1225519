// Package main is the single-binary entrypoint for subfile: serve,
// publish, and download subcommands over a shared content store.
package main

import "github.com/subfile-network/subfile/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
