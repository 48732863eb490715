package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"casting-api/internal/auth"
	"casting-api/internal/config"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the identity provider's signing keys",
	Long:  `Fetch the JWKS document from AUTH0_DOMAIN and print the usable signing keys`,
	RunE:  runKeys,
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	set, err := newKeySetCache(cfg, nil).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", cfg.JWKSURL(), err)
	}

	printKeySet(cmd.OutOrStdout(), cfg.JWKSURL(), set)
	return nil
}

func printKeySet(w io.Writer, url string, set *auth.KeySet) {
	fmt.Fprintf(w, "%s (%d keys, fetched %s)\n", url, set.Len(), set.FetchedAt().Format(time.RFC3339))
	for _, kid := range set.KIDs() {
		key, _ := set.Key(kid)
		alg := key.Algorithm
		if alg == "" {
			alg = "-"
		}
		fmt.Fprintf(w, "  kid=%s alg=%s use=%s\n", kid, alg, key.Use)
	}
}
