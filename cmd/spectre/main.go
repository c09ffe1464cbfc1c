// Command spectre captures JSON API responses through a headless
// browser, mines the captured URLs into named resources, and serves the
// records back as a queryable REST API.
package main

import (
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spectre:", err)
		os.Exit(1)
	}
}
