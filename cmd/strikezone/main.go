package main

import (
	"os"

	"github.com/wonny/strikezone/cmd/strikezone/commands"
)

// main is the entry point for the strikezone CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/strikezone [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
