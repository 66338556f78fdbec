package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// apiClient talks to a running balance service.
type apiClient struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "saldo-cli",
		Short:         "Balance service CLI tool",
		Long:          `A command line interface for querying and debiting account balances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:5000", "Base URL of the balance service")
	rootCmd.PersistentFlags().DurationVar(&client.timeout, "timeout", 10*time.Second, "Request timeout")

	balanceCmd := &cobra.Command{
		Use:   "balance <usuario>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.do(cmd.OutOrStdout(), http.MethodGet, "/saldo/"+args[0], nil, "")
		},
	}

	var payKey string
	payCmd := &cobra.Command{
		Use:   "pay <usuario> <monto>",
		Short: "Debit a payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := debitBody(args[0], args[1])
			if err != nil {
				return err
			}
			return client.do(cmd.OutOrStdout(), http.MethodPost, "/pago", body, payKey)
		},
	}
	payCmd.Flags().StringVar(&payKey, "idempotency-key", "", "Idempotency-Key header to send")

	var withdrawKey string
	withdrawCmd := &cobra.Command{
		Use:   "withdraw <usuario> <monto>",
		Short: "Debit a withdrawal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := debitBody(args[0], args[1])
			if err != nil {
				return err
			}
			return client.do(cmd.OutOrStdout(), http.MethodPost, "/retiro", body, withdrawKey)
		},
	}
	withdrawCmd.Flags().StringVar(&withdrawKey, "idempotency-key", "", "Idempotency-Key header to send")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.do(cmd.OutOrStdout(), http.MethodGet, "/health", nil, "")
		},
	}

	rootCmd.AddCommand(balanceCmd, payCmd, withdrawCmd, healthCmd)

	return rootCmd
}

// debitBody builds {usuario, monto}. monto is sent verbatim so the server,
// not the CLI, decides whether it is acceptable.
func debitBody(usuario, monto string) ([]byte, error) {
	if !json.Valid([]byte(monto)) {
		return nil, fmt.Errorf("monto %q is not a JSON value", monto)
	}

	return json.Marshal(struct {
		Usuario string          `json:"usuario"`
		Monto   json.RawMessage `json:"monto"`
	}{Usuario: usuario, Monto: json.RawMessage(monto)})
}

func (c *apiClient) do(out io.Writer, method, path string, body []byte, idempotencyKey string) error {
	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := (&http.Client{Timeout: c.timeout}).Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	printJSON(out, respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

// printJSON pretty-prints body, falling back to the raw bytes.
func printJSON(out io.Writer, body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Fprintln(out, strings.TrimSpace(string(body)))
		return
	}
	fmt.Fprintln(out, buf.String())
}
