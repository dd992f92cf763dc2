package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "balancectl",
		Short: "Company balance CLI tool",
		Long:  `A command line interface for inspecting company balances and reconciliation state.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the balance API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(balanceCmd(), reconcileCmd(), driftReportCmd(), operationsCmd(), overrideCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [company-id]",
		Short: "Show current balances for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/companies/%s/balances", args[0]))
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [company-id]",
		Short: "Compare stored balances against the settled document totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/companies/%s/reconcile", args[0]))
		},
	}
}

func driftReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drift-report",
		Short: "Generate a fleet-wide reconciliation report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/reconciliation/report")
		},
	}
}

func operationsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "operations [company-id]",
		Short: "List the most recent ledger operations for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/companies/%s/operations?limit=%d", args[0], limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of operations to list")
	return cmd
}

func overrideCmd() *cobra.Command {
	var (
		companyID   int64
		balanceType string
		newBalance  string
		description string
		userID      string
		userName    string
	)
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Submit a manual balance override",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/overrides/", map[string]any{
				"company_id":   companyID,
				"balance_type": balanceType,
				"new_balance":  newBalance,
				"description":  description,
				"user_id":      userID,
				"user_name":    userName,
			})
		},
	}
	cmd.Flags().Int64Var(&companyID, "company", 0, "Company ID")
	cmd.Flags().StringVar(&balanceType, "type", "CASH", "Balance bucket (CASH or BANK)")
	cmd.Flags().StringVar(&newBalance, "new-balance", "", "Target balance value")
	cmd.Flags().StringVar(&description, "description", "", "Reason for the override")
	cmd.Flags().StringVar(&userID, "user", "", "Submitting user ID")
	cmd.Flags().StringVar(&userName, "user-name", "", "Submitting user name")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("new-balance")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func postJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, respBody)
	}

	printJSON(decoded)
	return nil
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("invalid response body: %w", err)
	}

	printJSON(decoded)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to format response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
