// Package sink pushes finished chunks to a downstream indexing service
// (an embedding/vector pipeline) over HTTP. The sink is optional: when
// no base URL is configured the pipeline keeps chunks local only.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tmalloy/docchunk/internal/doctree"
)

// RetryableError marks transient sink failures (throttling, 5xx) that
// the pipeline may retry with backoff.
type RetryableError struct {
	Status int
	Msg    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("sink: retryable status %d: %s", e.Status, e.Msg)
}

// Client communicates with the chunk sink HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// pushRequest is the body for POST /documents/{id}/chunks.
type pushRequest struct {
	DocumentID   string          `json:"document_id"`
	SourceFormat string          `json:"source_format"`
	Filename     string          `json:"filename"`
	Offset       int             `json:"offset"`
	Chunks       []doctree.Chunk `json:"chunks"`
}

// PushChunks uploads one batch of a document's chunk sequence. Offset is
// the index of the first chunk in the batch, so batches may arrive in
// any order.
func (c *Client) PushChunks(ctx context.Context, documentID, sourceFormat, filename string, offset int, chunks []doctree.Chunk) error {
	body, err := json.Marshal(pushRequest{
		DocumentID:   documentID,
		SourceFormat: sourceFormat,
		Filename:     filename,
		Offset:       offset,
		Chunks:       chunks,
	})
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}

	endpoint := c.baseURL + "/documents/" + url.PathEscape(documentID) + "/chunks"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RetryableError{Status: 0, Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{Status: resp.StatusCode, Msg: string(respBody)}
	}
	return fmt.Errorf("sink: push chunks for %s: status %d: %s", documentID, resp.StatusCode, string(respBody))
}

// DeleteDocument removes a document's chunks downstream.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	endpoint := c.baseURL + "/documents/" + url.PathEscape(documentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sink: delete document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("sink: delete document %s: status %d: %s", documentID, resp.StatusCode, string(respBody))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
