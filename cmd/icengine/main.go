package main

import (
	"os"

	"github.com/investorcenter/icengine/cmd/icengine/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
