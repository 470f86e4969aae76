// cmd/dsk/main.go
package main

import (
	"os"

	"dsk/cmd/dsk/commands"
	"dsk/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		errors.FprintChain(os.Stderr, err)
		os.Exit(1)
	}
}
