package main

import (
	"os"

	"github.com/styleprobe/styleprobe/cmd"
)

func main() {
	if err := cmd.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
