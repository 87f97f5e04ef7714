package main

import (
	"os"

	"github.com/abhisek/mathlearn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
