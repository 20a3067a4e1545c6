// Package main provides the entry point for the gitbatch CLI.
package main

import (
	"context"
	"os"

	"github.com/ItsDalk-Lane/gitbatch/internal/cli"
)

// Set at build time via -ldflags "-X main.version=...".
var (
	version = "" //nolint:gochecknoglobals // set by ldflags
	commit  = "" //nolint:gochecknoglobals // set by ldflags
	date    = "" //nolint:gochecknoglobals // set by ldflags
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
