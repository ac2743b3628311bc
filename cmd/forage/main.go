// Command forage crawls, ingests and searches content for retrieval.
package main

import (
	"fmt"
	"os"

	"github.com/forage-dev/forage/internal/adapters/driving/cli"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
