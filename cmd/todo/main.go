package main

import (
	"fmt"

	"github.com/tgienger/todo/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Execute(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
}
