package main

import (
	"os"

	"github.com/brandt/screener/backend/cmd/screener/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
