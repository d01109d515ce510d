package main

import (
	"os"

	"github.com/kaidence/cc-statusline/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
