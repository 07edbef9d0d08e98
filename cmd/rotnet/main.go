// Command rotnet plays rotating chess between two peers.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rotnet/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rotnet: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
