// Command grounder builds and queries a grounded retrieval index over a
// local HTML corpus.
package main

import (
	"os"

	"github.com/negah-labs/grounder/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
