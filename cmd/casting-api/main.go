package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casting-api",
	Short: "Casting API - actors and movies behind identity provider tokens",
	Long:  `A Go API for a casting agency: actors and movies CRUD guarded by JWT permissions verified against the identity provider's JWKS.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
