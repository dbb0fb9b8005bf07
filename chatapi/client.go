package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ateneo-app/ateneo"
	"github.com/charmbracelet/log"
)

// Interface compliance checks.
var (
	_ ateneo.Streamer   = (*Client)(nil)
	_ ateneo.Completer  = (*Client)(nil)
	_ ateneo.Controller = (*Client)(nil)
)

// Client talks to the generation backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for skipped-frame warnings and side
// channel diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     log.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream opens the streaming chat endpoint and returns a [ateneo.Stream]
// over its decoded events. A non-success status or a non-streamable body is
// an error here, never a stream: the caller falls back to Complete.
func (c *Client) Stream(ctx context.Context, req ateneo.Request) (ateneo.Stream, error) {
	resp, err := c.post(ctx, streamPath, buildRequest(req), "text/event-stream")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return nil, fmt.Errorf("chatapi: backend did not stream (Content-Type %q)", ct)
	}

	return newStream(ctx, resp.Body, c.logger), nil
}

// Complete issues the synchronous equivalent of a streaming request and
// returns the full answer in one shot.
func (c *Client) Complete(ctx context.Context, req ateneo.Request) (ateneo.Answer, error) {
	resp, err := c.post(ctx, chatPath, buildRequest(req), "application/json")
	if err != nil {
		return ateneo.Answer{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ateneo.Answer{}, parseHTTPError(resp)
	}

	// The answer object carries the full text plus the same descriptive
	// fields used by the terminal streaming event, flattened alongside it.
	fields := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return ateneo.Answer{}, fmt.Errorf("chatapi: decode answer: %w", err)
	}

	ans := ateneo.Answer{}
	if v, ok := fields["response"].(string); ok {
		ans.Text = v
		delete(fields, "response")
	}
	if v, ok := fields["reasoning"].(string); ok {
		ans.Reasoning = v
		delete(fields, "reasoning")
	}
	if len(fields) > 0 {
		ans.Metadata = fields
	}
	return ans, nil
}

// Stop asks the backend to cancel the generation identified by sessionID.
func (c *Client) Stop(ctx context.Context, sessionID string) (ateneo.StopResult, error) {
	return c.control(ctx, stopPath, apiStopRequest{RequestID: sessionID})
}

// Reset unconditionally clears any server-side stuck generation state.
func (c *Client) Reset(ctx context.Context) (ateneo.StopResult, error) {
	return c.control(ctx, resetPath, nil)
}

func (c *Client) control(ctx context.Context, path string, body any) (ateneo.StopResult, error) {
	resp, err := c.post(ctx, path, body, "application/json")
	if err != nil {
		return ateneo.StopResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ateneo.StopResult{}, parseHTTPError(resp)
	}

	var cr apiControlResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return ateneo.StopResult{}, fmt.Errorf("chatapi: decode response: %w", err)
	}
	return ateneo.StopResult{Success: cr.Success, Message: cr.Message}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("chatapi: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("chatapi: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chatapi: %w", err)
	}
	return resp, nil
}

func buildRequest(req ateneo.Request) apiRequest {
	api := apiRequest{
		ConversationID: req.ConversationID,
		CourseID:       req.CourseID,
		Question:       req.Prompt,
	}
	for _, turn := range req.History {
		api.History = append(api.History, apiHistory{Question: turn.Prompt, Answer: turn.Answer})
	}
	return api
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("chatapi: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("chatapi: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("chatapi: HTTP %d: %s", resp.StatusCode, apiErr.Error)
}
