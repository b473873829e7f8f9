package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/bankrecon/internal/infrastructure/auth"
)

func tokenCmd() *cobra.Command {
	var (
		secret string
		ttl    time.Duration
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0], scopes...)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", ""), "Signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Granted scopes (default: read and write)")

	return cmd
}
