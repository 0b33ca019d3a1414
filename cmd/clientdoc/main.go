// Package main provides the clientdoc command.
package main

import (
	"fmt"
	"os"

	"github.com/example/clientdoc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "clientdoc:", err)
		os.Exit(1)
	}
}
