package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"codeberg.org/promptcraft/server/internal/optimizer"
	tea "github.com/charmbracelet/bubbletea"
)

// timeout for optimize requests
const requestTimeout = 60 * time.Second

// talks to the promptcraft REST API
type Client struct {
	endpoint   string
	token      string
	timezone   string
	httpClient *http.Client
}

// remaining quota as reported by the server
type Usage struct {
	Premium   bool   `json:"premium"`
	Today     string `json:"today"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Notice    string `json:"notice,omitempty"`
}

type OptimizeResult struct {
	OptimizedPrompt string `json:"optimizedPrompt"`
	Model           string `json:"model"`
	Style           string `json:"style"`
	Usage           Usage  `json:"usage"`
}

type optimizeRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// creates a client from PROMPTCRAFT_API_ENDPOINT and PROMPTCRAFT_TOKEN
func NewClient() *Client {
	endpoint := os.Getenv("PROMPTCRAFT_API_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	return NewClientFor(endpoint, os.Getenv("PROMPTCRAFT_TOKEN"))
}

// creates a client for an explicit endpoint; an empty token means anonymous
func NewClientFor(endpoint, token string) *Client {
	// the server tracks anonymous quota through a device cookie
	jar, _ := cookiejar.New(nil) //nolint:errcheck // nil options never fail

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		timezone: time.Local.String(),
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
	}
}

// optimizes a prompt in the given style
func (c *Client) Optimize(ctx context.Context, prompt string, style optimizer.Style) (*OptimizeResult, error) {
	payload, err := json.Marshal(optimizeRequest{Prompt: prompt, Style: string(style)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result OptimizeResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/optimize", payload, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// fetches today's usage
func (c *Client) Usage(ctx context.Context) (*Usage, error) {
	var usage Usage
	if err := c.do(ctx, http.MethodGet, "/api/v1/usage", nil, &usage); err != nil {
		return nil, err
	}

	return &usage, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.timezone != "" && c.timezone != "Local" {
		req.Header.Set("X-Timezone", c.timezone)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%s", errResp.Message)
		}

		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// returns a tea.Cmd that sends an optimize request
func (c *Client) OptimizeCmd(prompt string, style optimizer.Style) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := c.Optimize(ctx, prompt, style)
		if err != nil {
			return OptimizeErrorMsg{err: err}
		}

		return OptimizeResponseMsg{result: *result}
	}
}

// returns a tea.Cmd that fetches usage; failures are silent
func (c *Client) UsageCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		usage, err := c.Usage(ctx)
		if err != nil {
			return nil
		}

		return UsageMsg{usage: *usage}
	}
}
