// Package mailbridge talks to the SMTP bridge service over HTTP. It is the
// delivery path used when no Kafka brokers are configured.
package mailbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/talantix/portal/pkg/config"
)

type Client struct {
	client *retryablehttp.Client
	url    string
	apiKey string
	from   string
}

func NewClient(cfg config.MailConfig) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryAttempts
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	return &Client{
		client: client,
		url:    cfg.BridgeURL,
		apiKey: cfg.BridgeAPIKey,
		from:   cfg.FromAddress,
	}
}

type sendEmailRequest struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body"`
	HTMLBody string   `json:"html_body,omitempty"`
}

// SendEmail delivers the message in a background goroutine so the HTTP
// response is never held open for SMTP round-trips. Errors are logged only.
func (c *Client) SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) {
	go func() {
		// detach from the request context: the caller's request finishes
		// before delivery does
		err := c.send(context.WithoutCancel(ctx), to, subject, textBody, htmlBody)
		if err != nil {
			slog.Error("mail delivery failed", "to", to, "subject", subject, "error", err)
		}
	}()
}

func (c *Client) send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	body := sendEmailRequest{
		From:     c.from,
		To:       []string{to},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url+"/send-email", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("bridge returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
