package config_test

import (
	"fmt"

	"github.com/wonny/strikezone/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Analysis config: %s\n", cfg.AnalysisConfig)
	fmt.Printf("Ledger enabled: %v\n", cfg.Database.Enabled())
	fmt.Printf("Publishing enabled: %v\n", cfg.S3.Enabled())
}
