package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iho/bankrecon/internal/adapter/http/dto"
	"github.com/iho/bankrecon/internal/adapter/render"
)

// apiClient talks to the bankrecon HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, idempotencyKey string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(payload), 200))
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func submitCmd() *cobra.Command {
	var (
		f              reconcileFlags
		from, to       string
		token          string
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a reconciliation to the API",
		Long: `Submit a reconciliation to the API. With --ledger both sides are sent;
without it the server reads the ledger side for --from/--to from its ledger store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(cmd)
			if err != nil {
				return err
			}

			client := newAPIClient(token)
			var run render.Run

			if f.ledgerFile != "" {
				err = client.do(cmd.Context(), http.MethodPost, "/api/v1/reconciliations", req, idempotencyKey, &run)
			} else {
				body := dto.ReconcileAccountRequest{
					StatementDate:         req.StatementDate,
					From:                  from,
					To:                    to,
					StatementTransactions: req.StatementTransactions,
					BankBeginningBalance:  req.BankBeginningBalance,
					BankEndingBalance:     req.BankEndingBalance,
					Options:               req.Options,
				}
				path := "/api/v1/accounts/" + url.PathEscape(f.account) + "/reconciliations"
				err = client.do(cmd.Context(), http.MethodPost, path, body, idempotencyKey, &run)
			}
			if err != nil {
				return err
			}

			return writeRun(cmd.OutOrStdout(), f.format, &run)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "Start of the ledger period (YYYY-MM-DD), used without --ledger")
	cmd.Flags().StringVar(&to, "to", "", "End of the ledger period (YYYY-MM-DD), used without --ledger")
	cmd.Flags().StringVar(&token, "token", envOr("BANKRECON_TOKEN", ""), "Bearer token")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")

	return cmd
}

func runsCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored reconciliation runs",
	}
	cmd.PersistentFlags().StringVar(&token, "token", envOr("BANKRECON_TOKEN", ""), "Bearer token")

	var format string
	getCmd := &cobra.Command{
		Use:   "get <run-id>",
		Short: "Fetch a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var run render.Run
			if err := newAPIClient(token).do(cmd.Context(), http.MethodGet, "/api/v1/reconciliations/"+url.PathEscape(args[0]), nil, "", &run); err != nil {
				return err
			}
			return writeRun(cmd.OutOrStdout(), format, &run)
		},
	}
	getCmd.Flags().StringVar(&format, "format", "json", "Output format: json or text")

	var limit int
	listCmd := &cobra.Command{
		Use:   "list <account>",
		Short: "List an account's most recent runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/reconciliations?limit=" + strconv.Itoa(limit)

			var resp dto.ListRunsResponse
			if err := newAPIClient(token).do(cmd.Context(), http.MethodGet, path, nil, "", &resp); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, r := range resp.Runs {
				status := "unreconciled"
				if r.Summary.IsReconciled {
					status = "reconciled"
				}
				fmt.Fprintf(w, "%s  %s  %s  %-12s  difference %s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Summary.StatementDate, status, r.Summary.Difference.StringFixed(2))
			}
			fmt.Fprintf(w, "%d run(s)\n", resp.Total)
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")

	cmd.AddCommand(getCmd, listCmd)
	return cmd
}
