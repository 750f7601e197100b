// Package reporter delivers audit reports to a collection server.
package reporter

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"hostaudit/internal/audit"
)

const (
	// Retry configuration.
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	// HTTP client timeout.
	httpTimeout = 30 * time.Second

	reportPath = "/api/v1/report"
)

// Reporter POSTs reports to a server.
type Reporter struct {
	httpClient *http.Client
	serverURL  string
	attempts   uint
	delay      time.Duration
}

// New returns a Reporter for serverURL with the default retry policy.
func New(serverURL string) *Reporter {
	return &Reporter{
		serverURL:  strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{Timeout: httpTimeout},
		attempts:   maxRetries,
		delay:      initialBackoff,
	}
}

// Send delivers the report, retrying transient failures.
func (r *Reporter) Send(ctx context.Context, report audit.Report) error {
	err := retry.Do(func() error {
		return r.send(ctx, report)
	}, retry.Attempts(r.attempts), retry.Delay(r.delay), retry.MaxDelay(maxBackoff))
	if err != nil {
		return fmt.Errorf("failed to send report after %d attempts: %w", r.attempts, err)
	}
	return nil
}

func (r *Reporter) send(ctx context.Context, report audit.Report) error {
	var body bytes.Buffer
	if err := audit.Emit(&body, report); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.serverURL+reportPath, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("[WARN] Error closing response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}

