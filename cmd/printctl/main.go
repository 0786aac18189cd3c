package main

import (
	"os"

	"github.com/local/printdesk/cmd/printctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
