// Package main provides the entry point for the work.ua resume toolkit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "workua",
	Short: "work.ua resume acquisition and structuring toolkit",
	Long:  "workua crawls work.ua resume listings, extracts structured payloads and turns free-text experience sections into queryable records.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
