package relay

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"concierium/internal/platform/httpclient"
)

// Client implementa notify.Notifier contra una function externa de correo
// (el despliegue serverless envía email vía un endpoint dedicado).
type Client struct {
	http *httpclient.Client
	url  string
}

func New(url string, timeout time.Duration) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("relay url required")
	}
	return &Client{
		http: httpclient.New(timeout),
		url:  url,
	}, nil
}

// NewWithTransport permite inyectar un RoundTripper (tests).
func NewWithTransport(url string, timeout time.Duration, tr http.RoundTripper) (*Client, error) {
	c, err := New(url, timeout)
	if err != nil {
		return nil, err
	}
	c.http = httpclient.NewWithTransport(timeout, tr)
	return c, nil
}

type sendPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("recipient required")
	}
	return c.http.DoJSON(ctx, http.MethodPost, c.url, nil, sendPayload{
		To:      to,
		Subject: subject,
		Text:    body,
	}, nil)
}
