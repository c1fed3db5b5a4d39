// Command figfiles lists design files across teams with a local cache.
package main

import (
	"os"

	"github.com/kilupskalvis/figfiles/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
