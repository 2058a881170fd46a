package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"enrollment-assessment/internal/domain"
)

// Client posts lead submissions to a CRM inbound webhook.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for url. An empty url disables delivery.
// No client timeout is set; the caller's context bounds the request.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{url: url, http: httpClient}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Submit sends the payload. Transport failures are returned; a non-success
// status is only logged.
func (c *Client) Submit(ctx context.Context, submission domain.Submission) error {
	if !c.Enabled() {
		return nil
	}
	body, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("webhook response not ok: %d", resp.StatusCode)
	}
	return nil
}
