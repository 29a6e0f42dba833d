// Command dwitlit is the command-line interface to a dwitlit record store.
package main

import (
	"os"

	"github.com/mesh-intelligence/dwitlit/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
