// Package decision submits collected applicant data to the downstream
// decision API and interprets its verdict.
package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"quotebot/internal/domain"
)

// RequestError reports a failed decision call: a network error or a
// non-2xx status from the endpoint.
type RequestError struct {
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("decision request failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("decision request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ResponseFormatError reports a 2xx response whose body did not carry
// the expected decision field.
type ResponseFormatError struct {
	Body string
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("decision response missing decision field: %s", e.Body)
}

// Client submits applications to the decision endpoint over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a decision client for the given endpoint URL.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
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

// Submit posts the applicant data and returns the decision string.
func (c *Client) Submit(ctx context.Context, applicant domain.Applicant) (string, error) {
	body, err := json.Marshal(applicant)
	if err != nil {
		return "", &RequestError{Err: fmt.Errorf("encode application: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &RequestError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &RequestError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RequestError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", truncate(string(raw), 400)),
		}
	}

	var parsed struct {
		Decision string `json:"decision"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Decision == "" {
		return "", &ResponseFormatError{Body: truncate(string(raw), 400)}
	}
	return parsed.Decision, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
