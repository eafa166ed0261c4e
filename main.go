package main

import (
	"os"

	"github.com/hyperterse/graphgate/core/cli"
)

// Version can be set at build time using -ldflags
var Version = "dev"

func main() {
	os.Exit(cli.Run(Version, os.Args[1:]))
}
