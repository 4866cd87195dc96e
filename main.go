package main

import (
	"os"

	"github.com/spottenn/pokemon-gym/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
