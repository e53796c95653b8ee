package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewLogCommand constructs the `log` command group and subcommands.
func NewLogCommand(baseURL BaseURLFunc) *cobra.Command {
	logCmd := &cobra.Command{Use: "log", Short: "Log operations"}
	logCmd.AddCommand(
		newLogSubmitCommand(baseURL),
		newLogTailCommand(baseURL),
		newLogIngestCommand(baseURL),
	)
	return logCmd
}

// newLogSubmitCommand constructs the `log submit` subcommand.
func newLogSubmitCommand(baseURL BaseURLFunc) *cobra.Command {
	submitCmd := &cobra.Command{
		Use:   "submit [message]",
		Short: "Submit one message directly to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]string{"message": args[0]})
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
				baseURL()+"/v1/submit", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusAccepted {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("submit failed: %s: %s", resp.Status, bytes.TrimSpace(b))
			}
			var receipt map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(receipt)
		},
	}
	return submitCmd
}

// newLogTailCommand constructs the `log tail` subcommand.
func newLogTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Fetch the most recent entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("n")
			u := baseURL() + "/v1/logs/latest"
			if n > 0 {
				u += "?n=" + strconv.Itoa(n)
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("tail failed: %s: %s", resp.Status, bytes.TrimSpace(b))
			}
			var tail map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&tail); err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(tail)
		},
	}
	tailCmd.Flags().IntP("n", "n", 0, "Number of entries (0 = server default)")
	return tailCmd
}

// newLogIngestCommand constructs the `log ingest` subcommand. It streams
// stdin to the instance's ingestion endpoint.
func newLogIngestCommand(baseURL BaseURLFunc) *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Stream stdin lines into the ingestion pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if in == nil {
				in = os.Stdin
			}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
				baseURL()+"/v1/ingest", in)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusAccepted {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("ingest failed: %s: %s", resp.Status, bytes.TrimSpace(b))
			}
			_, _ = io.Copy(cmd.OutOrStdout(), resp.Body)
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	return ingestCmd
}

// NewHealthCommand constructs the `health` command.
func NewHealthCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check instance health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				baseURL()+"/v1/healthz", nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", resp.Status)
			return nil
		},
	}
}
