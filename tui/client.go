// Package tui is a terminal chat client for the question-answer endpoint.
package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"policyrag/types"
)

// Client posts questions to a running service instance.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 90 * time.Second},
		baseURL: baseURL,
	}
}

func (c *Client) Ask(query string, useLocal bool) (*types.AskResponse, error) {
	body, err := json.Marshal(types.AskParams{Query: query, UseLocal: useLocal})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.http.Post(c.baseURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ask request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ask request: unexpected status %d", resp.StatusCode)
	}
	var out types.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
