// Command libkv inspects and edits typed containers in a local store.
package main

import (
	"fmt"
	"os"

	"github.com/AmitPr/libkv/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
