package main

import (
	"os"

	"github.com/ensmesh/ensmesh/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
