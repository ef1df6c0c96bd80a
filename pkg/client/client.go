// Package client is the HTTP client genomectl uses to talk to a running
// genomed daemon.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"genomed/internal/genomed/files"
	"genomed/internal/genomed/mcp"
	"genomed/internal/genomed/stream"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(serverAddr string) *Client {
	return &Client{
		baseURL: "http://" + serverAddr,
		// no overall timeout: streams are long-lived, callers cancel via ctx
		http: &http.Client{},
	}
}

// ReadWhole fetches the entire file content through the daemon.
func (c *Client) ReadWhole(ctx context.Context, path string) (string, error) {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/read", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
		Error   string `json:"error"`
	}
	if err := c.doJSON(req, &result); err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("read failed: %s", result.Error)
	}
	return result.Data, nil
}

// FileInfo fetches file metadata.
func (c *Client) FileInfo(ctx context.Context, path string) (files.Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/files/info?path="+url.QueryEscape(path), nil)
	if err != nil {
		return files.Info{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return files.Info{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return files.Info{}, decodeError(resp)
	}

	var info files.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return files.Info{}, fmt.Errorf("failed to decode file info: %w", err)
	}
	return info, nil
}

// StreamEvent is one decoded server-sent event from a file stream.
type StreamEvent struct {
	Type     stream.EventType
	Batch    *stream.LineBatch
	Progress *stream.Progress
	Done     *stream.Completion
	Err      string
}

// Stream consumes a file stream, invoking handle per event in arrival order.
// Returns after the terminal event, or with an error if the stream breaks.
func (c *Client) Stream(ctx context.Context, path string, chunkSize int, handle func(StreamEvent) error) error {
	u := c.baseURL + "/api/files/stream?path=" + url.QueryEscape(path)
	if chunkSize > 0 {
		u += "&chunkSize=" + strconv.Itoa(chunkSize)
	}

	return c.consumeSSE(ctx, u, func(event string, data []byte) error {
		ev := StreamEvent{Type: stream.EventType(event)}

		switch ev.Type {
		case stream.EventLines:
			ev.Batch = &stream.LineBatch{}
			if err := json.Unmarshal(data, ev.Batch); err != nil {
				return fmt.Errorf("bad lines event: %w", err)
			}
		case stream.EventProgress:
			ev.Progress = &stream.Progress{}
			if err := json.Unmarshal(data, ev.Progress); err != nil {
				return fmt.Errorf("bad progress event: %w", err)
			}
		case stream.EventComplete:
			ev.Done = &stream.Completion{}
			if err := json.Unmarshal(data, ev.Done); err != nil {
				return fmt.Errorf("bad complete event: %w", err)
			}
		case stream.EventError:
			var payload struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(data, &payload)
			ev.Err = payload.Error
		default:
			return nil
		}

		return handle(ev)
	})
}

// Watch consumes change notifications for path until ctx is cancelled.
func (c *Client) Watch(ctx context.Context, path string, onChange func()) error {
	u := c.baseURL + "/api/files/watch?path=" + url.QueryEscape(path)
	return c.consumeSSE(ctx, u, func(event string, _ []byte) error {
		if event == "change" {
			onChange()
		}
		return nil
	})
}

// MCPStart asks the daemon to start the MCP service.
func (c *Client) MCPStart(ctx context.Context) (mcp.StartResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/mcp/start", nil)
	if err != nil {
		return mcp.StartResult{}, err
	}

	var result struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		HTTPPort int    `json:"httpPort"`
		WSPort   int    `json:"wsPort"`
	}
	if err := c.doJSON(req, &result); err != nil {
		return mcp.StartResult{}, err
	}
	if !result.Success {
		return mcp.StartResult{}, fmt.Errorf("start failed: %s", result.Message)
	}
	return mcp.StartResult{Message: result.Message, HTTPPort: result.HTTPPort, WSPort: result.WSPort}, nil
}

// MCPStop asks the daemon to stop the MCP service.
func (c *Client) MCPStop(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/mcp/stop", nil)
	if err != nil {
		return "", err
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.doJSON(req, &result); err != nil {
		return "", err
	}
	if !result.Success {
		return "", fmt.Errorf("stop failed: %s", result.Message)
	}
	return result.Message, nil
}

// MCPStatus fetches the current lifecycle status.
func (c *Client) MCPStatus(ctx context.Context) (mcp.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/mcp/status", nil)
	if err != nil {
		return mcp.Status{}, err
	}

	var status mcp.Status
	if err := c.doJSON(req, &status); err != nil {
		return mcp.Status{}, err
	}
	return status, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// consumeSSE reads an SSE response line by line and dispatches each
// event/data pair to handle.
func (c *Client) consumeSSE(ctx context.Context, url string, handle func(event string, data []byte) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			if err := handle(event, []byte(data)); err != nil {
				return err
			}
		case line == "":
			event = ""
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream interrupted: %w", err)
	}
	return ctx.Err()
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}

// WaitForDaemon polls the status endpoint until the daemon answers or the
// deadline passes.
func (c *Client) WaitForDaemon(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		_, err := c.MCPStatus(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("daemon did not answer within %s: %w", timeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
