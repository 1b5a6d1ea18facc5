// Package messaging is a client for a template-based messaging API that
// delivers approved templates to phone numbers.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 2048
	channelPrefix  = "whatsapp:"
)

type Config struct {
	BaseURL   string
	AccountID string
	AuthToken string
	Sender    string
	Timeout   time.Duration
}

// StatusError is a non-2xx reply from the API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("messaging api returned %d: %s", e.Status, e.Body)
}

// TemplateMessage is one templated send.
type TemplateMessage struct {
	To         string
	TemplateID string
	Variables  map[string]string
	MediaURL   string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether credentials and a sender are configured.
func (c *Client) Enabled() bool {
	return c.cfg.BaseURL != "" && c.cfg.AccountID != "" && c.cfg.AuthToken != "" && c.cfg.Sender != ""
}

// Sender is the configured sender address.
func (c *Client) Sender() string {
	return c.cfg.Sender
}

// SendTemplate posts one message and returns the provider's message id.
func (c *Client) SendTemplate(ctx context.Context, msg TemplateMessage) (string, error) {
	vars, err := json.Marshal(msg.Variables)
	if err != nil {
		return "", fmt.Errorf("failed to encode template variables: %w", err)
	}

	form := url.Values{}
	form.Set("To", channelPrefix+msg.To)
	form.Set("From", channelPrefix+c.cfg.Sender)
	form.Set("ContentSid", msg.TemplateID)
	form.Set("ContentVariables", string(vars))
	if msg.MediaURL != "" {
		form.Set("MediaUrl", msg.MediaURL)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.cfg.BaseURL, url.PathEscape(c.cfg.AccountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("messaging request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var reply struct {
		SID string `json:"sid"`
	}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &reply)
	}
	return reply.SID, nil
}
