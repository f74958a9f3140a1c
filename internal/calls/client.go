// Package calls controls live telephony calls through the
// call-automation REST API.
package calls

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Client issues call-control operations against the call-automation
// endpoint parsed from the connection string.
type Client struct {
	endpoint   string
	accessKey  string
	httpClient *http.Client
}

// NewClient creates a call-automation client.
func NewClient(endpoint, accessKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint:  endpoint,
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: 3 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   3 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
}

type playRequest struct {
	PlaySources []playSource `json:"playSources"`
}

type playSource struct {
	Kind string     `json:"kind"`
	Text textSource `json:"text"`
}

type textSource struct {
	Text string `json:"text"`
}

// PlayText speaks text into the live call identified by
// callConnectionID.
func (c *Client) PlayText(ctx context.Context, callConnectionID, text string) error {
	body, err := json.Marshal(playRequest{
		PlaySources: []playSource{{Kind: "text", Text: textSource{Text: text}}},
	})
	if err != nil {
		return fmt.Errorf("encode play request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calling/callConnections/%s:play?api-version=2023-03-06",
		c.endpoint, url.PathEscape(callConnectionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build play request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("play text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return fmt.Errorf("play text: status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
