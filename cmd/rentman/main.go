package main

import (
	"fmt"
	"os"

	"github.com/kjk/rentman/cli"
)

func main() {
	if err := cli.Execute(cli.NewRootCommand()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
