// internal/common/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrModelUnavailable means the model path is not configured or the
	// endpoint could not be reached in time.
	ErrModelUnavailable = errors.New("MODEL_UNAVAILABLE")
	// ErrModelResponse means the completion came back but could not be
	// used (bad status payload, empty choices, undecodable body).
	ErrModelResponse = errors.New("MODEL_RESPONSE_INVALID")
)

// Client is a minimal chat-completion client for an OpenAI-compatible
// endpoint. It is only ever used for structured intent classification, so
// temperature stays low and responses are expected to be JSON documents.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		maxRetries: maxRetries,
		timeout:    timeout,
		// No client-level timeout; the per-call context bounds each attempt.
		httpClient: &http.Client{},
	}
}

// Available reports whether credentials were supplied at construction.
// When false, Complete always fails with ErrModelUnavailable and callers
// should skip the network round-trip entirely.
func (c *Client) Available() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends a system instruction plus the user text and returns the raw
// completion content.
func (c *Client) Complete(ctx context.Context, instruction, text string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("%w: no credentials configured", ErrModelUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: text},
		},
		"temperature": 0.1,
		"max_tokens":  512,
	}
	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrModelUnavailable, ctx.Err())
			}
		}

		// A fresh request each attempt; the body reader is consumed on send.
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, lastErr = c.httpClient.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return "", fmt.Errorf("%w: %v", ErrModelUnavailable, ctx.Err())
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, lastErr)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrModelUnavailable)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrModelResponse, err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrModelResponse)
	}

	return apiResponse.Choices[0].Message.Content, nil
}
