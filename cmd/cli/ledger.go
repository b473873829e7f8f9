package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/bankrecon/internal/adapter/importer"
	"github.com/iho/bankrecon/internal/adapter/record"
	postgresRepo "github.com/iho/bankrecon/internal/adapter/repository/postgres"
	"github.com/iho/bankrecon/internal/domain"
	"github.com/iho/bankrecon/internal/infrastructure/postgres"
)

// ledgerStore is the part of the ledger repository the CLI uses.
type ledgerStore interface {
	Import(ctx context.Context, account string, txns []domain.Transaction) (int, error)
	Count(ctx context.Context, account string) (int64, error)
}

// openLedgerStore connects to postgres; swapped out in tests.
var openLedgerStore = func(ctx context.Context, databaseURL string) (ledgerStore, func(), error) {
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("--database-url or DATABASE_URL is required")
	}

	pool, err := postgres.NewPool(ctx, databaseURL, 2, 1)
	if err != nil {
		return nil, nil, err
	}

	repo := postgresRepo.NewLedgerTransactionRepository(pool, postgresRepo.NewRetrier(zerolog.Nop()))
	return repo, pool.Close, nil
}

func ledgerCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger store operations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")

	var (
		account    string
		datePolicy string
	)
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a ledger export into the ledger store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := record.ParseDatePolicy(datePolicy)
			if err != nil {
				return err
			}

			export, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}

			txns, rejected := record.NewNormalizer(policy, nil).Normalize(export.Records, domain.SourceLedger)

			store, closeFn, err := openLedgerStore(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := store.Import(cmd.Context(), account, txns)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Imported %d transaction(s) into %s\n", n, account)
			for _, r := range rejected {
				fmt.Fprintf(w, "  skipped record %d (%s): %s\n", r.Position, r.ID, r.Reason)
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&account, "account", "", "Account name")
	importCmd.Flags().StringVar(&datePolicy, "date-policy", string(record.DatePolicyReject), "Handling of records without a date: reject or today")
	_ = importCmd.MarkFlagRequired("account")

	countCmd := &cobra.Command{
		Use:   "count <account>",
		Short: "Count the stored transactions of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openLedgerStore(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := store.Count(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
			return nil
		},
	}

	cmd.AddCommand(importCmd, countCmd)
	return cmd
}

var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back ledger store migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			if args[0] == "down" {
				return migrateDown(databaseURL, path)
			}
			return migrateUp(databaseURL, path)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")
	cmd.Flags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	return cmd
}
