package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultBaseURL = "https://api.line.me"

type (
	Logger interface {
		DebugContext(ctx context.Context, msg string, fields ...any)
		WarnContext(ctx context.Context, msg string, fields ...any)
	}

	HTTPClient interface {
		Do(req *http.Request) (*http.Response, error)
	}

	Profile struct {
		UserID        string `json:"userId"`
		DisplayName   string `json:"displayName"`
		PictureURL    string `json:"pictureUrl,omitempty"`
		StatusMessage string `json:"statusMessage,omitempty"`
	}

	TextMessage struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}

	PushRequest struct {
		To       string        `json:"to"`
		Messages []TextMessage `json:"messages"`
	}

	Option func(*Client)

	// Client talks to the LINE Messaging API. Requests are not retried.
	Client struct {
		token      string
		baseURL    string
		httpClient HTTPClient
		log        Logger
	}
)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func NewClient(token string, httpClient HTTPClient, log Logger, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		log:        log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/bot/profile/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	c.log.DebugContext(ctx, "sending request", "url", req.URL.String(), "method", req.Method)

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // ignore

	var profile Profile
	if err = json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &profile, nil
}

// DisplayName returns the profile display name, empty when LINE does not
// provide one.
func (c *Client) DisplayName(ctx context.Context, userID string) (string, error) {
	profile, err := c.GetProfile(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	return profile.DisplayName, nil
}

// Push sends a single text message to a user, group or room.
func (c *Client) Push(ctx context.Context, to, text string) error {
	body, err := json.Marshal(PushRequest{
		To:       to,
		Messages: []TextMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/bot/message/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	c.log.DebugContext(ctx, "sending push message", "url", req.URL.String(), "to", to)

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // ignore
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close() //nolint:errcheck // ignore
		c.log.WarnContext(ctx, "unexpected status code", "status_code", resp.StatusCode, "url", req.URL.String())

		body := make([]byte, 1024) //nolint:mnd // enough for an error payload
		n, _ := resp.Body.Read(body)
		c.log.DebugContext(ctx, "response payload", "payload", string(body[:n]))

		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp, nil
}
