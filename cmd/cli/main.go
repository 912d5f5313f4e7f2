package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/moneyledger/internal/infrastructure/auth"
	"github.com/iho/moneyledger/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOptions struct {
	baseURL string
	token   string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "moneyledger-cli",
		Short:         "MoneyLedger CLI tool",
		Long:          `A command line interface for interacting with the MoneyLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("MONEYLEDGER_URL", "http://localhost:8080"), "Base URL of the MoneyLedger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MONEYLEDGER_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(opts),
		txCmd(opts),
		dashboardCmd(opts),
		tokenCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// apiClient talks to the HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(opts *globalOptions) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		token:   opts.token,
		http:    &http.Client{Timeout: opts.timeout},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return respBody, nil
}

// call performs a request and pretty-prints the response body.
func call(cmd *cobra.Command, opts *globalOptions, method, path string, body any, headers map[string]string) error {
	out, err := newClient(opts).do(cmd.Context(), method, path, body, headers)
	if err != nil {
		return err
	}

	if len(out) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	}

	return printJSON(cmd.OutOrStdout(), json.RawMessage(out))
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func accountsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "accounts", Short: "Account operations"}

	var accountType, initial string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/api/v1/accounts/", map[string]string{
				"name":            args[0],
				"type":            strings.ToUpper(accountType),
				"initial_balance": initial,
			}, nil)
		},
	}
	create.Flags().StringVar(&accountType, "type", "CHECKING", "Account type")
	create.Flags().StringVar(&initial, "balance", "0", "Opening balance")

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, "/api/v1/accounts/", nil, nil)
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an empty account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodDelete, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	summary := &cobra.Command{
		Use:   "summary ID",
		Short: "Show account totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/summary", nil, nil)
		},
	}

	cmd.AddCommand(create, list, del, summary)
	return cmd
}

func txCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "tx", Short: "Transaction operations"}

	var idempotencyKey string
	cmd.PersistentFlags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header for POSTs")
	keyHeader := func() map[string]string {
		if idempotencyKey == "" {
			return nil
		}
		return map[string]string{"Idempotency-Key": idempotencyKey}
	}

	single := func(use, short, path string) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " ACCOUNT_ID AMOUNT",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, opts, http.MethodPost, path, map[string]any{
					"account_id":  args[0],
					"amount":      args[1],
					"description": optionalString(cmd, "description"),
				}, keyHeader())
			},
		}
		c.Flags().String("description", "", "Description")
		return c
	}

	transfer := &cobra.Command{
		Use:   "transfer FROM_ID TO_ID AMOUNT",
		Short: "Move money between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/api/v1/transactions/transfer", map[string]any{
				"from_account_id": args[0],
				"to_account_id":   args[1],
				"amount":          args[2],
				"description":     optionalString(cmd, "description"),
			}, keyHeader())
		},
	}
	transfer.Flags().String("description", "", "Description")

	var kind, from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if kind != "" {
				q.Set("type", strings.ToUpper(kind))
			}
			if from != "" {
				q.Set("from", from)
			}
			if to != "" {
				q.Set("to", to)
			}
			path := "/api/v1/transactions/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			return call(cmd, opts, http.MethodGet, path, nil, nil)
		},
	}
	list.Flags().StringVar(&kind, "type", "", "INCOME or EXPENSE")
	list.Flags().StringVar(&from, "from", "", "Start date (RFC3339 or YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "End date (RFC3339 or YYYY-MM-DD)")

	var page, limit int
	var sort string
	pageCmd := &cobra.Command{
		Use:   "page",
		Short: "Page through transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("page", fmt.Sprint(page))
			q.Set("limit", fmt.Sprint(limit))
			q.Set("sort", sort)
			return call(cmd, opts, http.MethodGet, "/api/v1/accounts/paginate?"+q.Encode(), nil, nil)
		},
	}
	pageCmd.Flags().IntVar(&page, "page", 1, "Page number")
	pageCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	pageCmd.Flags().StringVar(&sort, "sort", "desc", "asc or desc")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Reverse and delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodDelete, "/api/v1/transactions/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	cmd.AddCommand(
		single("income", "Record income", "/api/v1/transactions/income"),
		single("expense", "Record an expense", "/api/v1/transactions/expense"),
		transfer, list, pageCmd, del,
	)
	return cmd
}

func dashboardCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show total balance and this month's totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, "/api/v1/dashboard/summary", nil, nil)
		},
	}
}

func tokenCmd() *cobra.Command {
	var secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token USER_ID",
		Short: "Mint a development bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

// migrateRunner is swapped in tests.
var migrateRunner = struct {
	up   func(databaseURL, path string) error
	down func(databaseURL, path string) error
}{
	up:   postgres.RunMigrations,
	down: postgres.RunMigrationsDown,
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{Use: "migrate", Short: "Apply or roll back postgres migrations"}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	cmd.PersistentFlags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations/postgres"), "Migrations directory")

	run := func(fn func(string, string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			if err := fn(databaseURL, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: run(func(u, p string) error { return migrateRunner.up(u, p) })},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", RunE: run(func(u, p string) error { return migrateRunner.down(u, p) })},
	)
	return cmd
}
