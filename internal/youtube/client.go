// Package youtube provides a minimal client for the YouTube Data API v3
// videos endpoint, keyed by an API key rather than OAuth.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/metadata"
)

const (
	defaultBaseURL  = "https://www.googleapis.com"
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 2 << 20 // 2 MiB
)

// ErrInvalidCredential means the API key is missing or was rejected.
var ErrInvalidCredential = metadata.ErrInvalidCredential

// HTTPClient allows injection for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRetryDelay sets the pause between Validate attempts.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	retryDelay time.Duration
}

// NewClient returns a client for apiKey. A blank key is rejected up front.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidCredential)
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup fetches contentDetails and snippet for up to 50 video ids.
func (c *Client) Lookup(ctx context.Context, ids []string) ([]metadata.Item, error) {
	query := url.Values{}
	query.Set("part", "contentDetails,snippet")
	query.Set("id", strings.Join(ids, ","))

	body, err := c.doRequest(ctx, "/youtube/v3/videos", query)
	if err != nil {
		return nil, err
	}

	var response videosResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse videos response: %w", err)
	}

	items := make([]metadata.Item, 0, len(response.Items))
	for _, v := range response.Items {
		item := metadata.Item{ID: v.ID}
		if v.ContentDetails != nil {
			item.Duration = v.ContentDetails.Duration
		}
		if v.Snippet != nil {
			item.Title = v.Snippet.Title
			item.Creator = v.Snippet.ChannelTitle
			if v.Snippet.CategoryID != nil {
				item.CategoryID = *v.Snippet.CategoryID
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Validate checks the key against the API with a one-result request.
// Server errors are retried; a rejected key yields ErrInvalidCredential.
func (c *Client) Validate(ctx context.Context) error {
	query := url.Values{}
	query.Set("part", "id")
	query.Set("chart", "mostPopular")
	query.Set("maxResults", "1")

	return retry.Do(
		func() error {
			_, err := c.doRequest(ctx, "/youtube/v3/videos", query)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode/100 == 5
		}),
	)
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("YouTube API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		if e.keyProblem() {
			return ErrInvalidCredential
		}
	}
	return nil
}

func (e *APIError) keyProblem() bool {
	if e.StatusCode == http.StatusUnauthorized {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "api key") || strings.Contains(msg, "keyinvalid")
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	query.Set("key", c.apiKey)
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer drainBody(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	var parsed errorResponse
	msg := ""
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
		for _, e := range parsed.Error.Errors {
			if e.Reason != "" {
				msg += " (" + e.Reason + ")"
			}
		}
	}
	if msg == "" {
		msg = describeStatus(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func describeStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "authentication failed - check your API key"
	case http.StatusForbidden:
		return "access denied - check that the YouTube Data API is enabled for this key"
	case http.StatusTooManyRequests:
		return "rate limit exceeded - please try again later"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "server error - please try again later"
	default:
		return http.StatusText(status)
	}
}

// drainBody lets the connection be reused for keep-alive.
func drainBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

// API response types (private - implementation detail)

type videosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails *struct {
			Duration *string `json:"duration"`
		} `json:"contentDetails"`
		Snippet *struct {
			Title        *string `json:"title"`
			ChannelTitle *string `json:"channelTitle"`
			CategoryID   *string `json:"categoryId"`
		} `json:"snippet"`
	} `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}
