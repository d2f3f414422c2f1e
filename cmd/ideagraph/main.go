package main

import (
	"os"

	"github.com/dgallion1/ideagraph/cmd/ideagraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
