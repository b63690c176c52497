package main

import (
	"os"

	"github.com/SaChIn5419/stock-screener/cmd/screener/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
