package main

import (
	"os"

	"github.com/chisel-dev/chisel/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
