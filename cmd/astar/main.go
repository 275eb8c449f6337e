package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zucenko/pathviz/search"
)

func main() {
	if err := run(newRootCmd(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes root with args and reports a failure on its error stream.
// An unreachable target has already been summarised on the output stream.
func run(root *cobra.Command, args []string) error {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil && !errors.Is(err, search.ErrUnreachable) {
		fmt.Fprintf(root.ErrOrStderr(), "astar: %v\n", err)
	}
	return err
}
