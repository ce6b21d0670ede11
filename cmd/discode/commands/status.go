package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/discode/pkg/types"
)

var statusURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active session bindings",
	Long:  `Query a running bridge's webhook API and print the active session-to-thread bindings.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "http://127.0.0.1:8194", "Base URL of the running bridge")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(statusURL + "/sync/status")
	if err != nil {
		return fmt.Errorf("bridge unreachable at %s: %w", statusURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, statusURL)
	}

	var status types.SyncStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return err
	}

	fmt.Printf("Active sessions: %d\n", status.ActiveSessions)
	if len(status.Sessions) == 0 {
		return nil
	}
	fmt.Println()
	for _, s := range status.Sessions {
		origin := "webhook"
		if s.ChatInitiated {
			origin = "chat"
		}
		fmt.Printf("  %s -> %s (%s)\n", s.SessionID, s.ThreadID, origin)
	}
	return nil
}
