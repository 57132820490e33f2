// Command ctlog analyzes the compilation log of a JIT runtime.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ctlog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
