package tana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the production Tana Input API endpoint.
const DefaultEndpoint = "https://europe-west1-tagr-prod.cloudfunctions.net/addToNodeV2"

// maxErrorBody bounds how much of a rejection body we keep for logs.
const maxErrorBody = 2048

// PublishError reports a non-200 response from the Input API, with the
// response body captured as diagnostic text.
type PublishError struct {
	Status int
	Body   string
}

func (e *PublishError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tana input api returned status %d", e.Status)
	}
	return fmt.Sprintf("tana input api returned status %d: %s", e.Status, e.Body)
}

// Client posts node trees to the Tana Input API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client. An empty endpoint selects DefaultEndpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Publish sends req with the caller's token as a bearer credential.
// Any status other than 200 is a *PublishError.
func (c *Client) Publish(ctx context.Context, token string, req Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tana request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &PublishError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// DiagnosePublish resubmits each child of root on its own so logs show
// which node a rejection came from. Results are logged only; partial
// success is not surfaced to the caller.
func (c *Client) DiagnosePublish(ctx context.Context, token, targetNodeID string, root Node) {
	for _, child := range root.Children {
		probe := Request{TargetNodeID: targetNodeID, Nodes: []Node{child}}
		if err := c.Publish(ctx, token, probe); err != nil {
			slog.Warn("diagnostic resubmit rejected", "node", child.Name, "error", err)
			continue
		}
		slog.Info("diagnostic resubmit accepted", "node", child.Name)
	}
}
