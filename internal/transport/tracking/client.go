package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"caseflow/internal/appers"
	"caseflow/pkg/httpclient"
)

// TicketUpdate carries the fields written to a tracking ticket when its case
// completes.
type TicketUpdate struct {
	Status  string `json:"status"`
	Outcome string `json:"outcome,omitempty"`
	Note    string `json:"note,omitempty"`
}

// Client mirrors case progress into the external case-tracking system.
// Updates are tolerant of repetition on the tracking side, which is what
// makes whole-attempt replay after partial failure acceptable.
type Client interface {
	UpdateTicket(ctx context.Context, ticketID string, fields TicketUpdate) error
	AddComment(ctx context.Context, ticketID, text string) error
	CloseTicket(ctx context.Context, ticketID, reason string) error
}

type HTTPClient struct {
	http    httpclient.HTTPClient
	baseURL string
	logger  *zap.SugaredLogger
}

func NewClient(http httpclient.HTTPClient, baseURL string, logger *zap.SugaredLogger) *HTTPClient {
	return &HTTPClient{http: http, baseURL: baseURL, logger: logger}
}

func (c *HTTPClient) UpdateTicket(ctx context.Context, ticketID string, fields TicketUpdate) error {
	c.logger.Debugf("[ticket: %s] UpdateTicket started", ticketID)

	url := fmt.Sprintf("%s/tickets/%s", c.baseURL, ticketID)
	return c.send(ctx, http.MethodPatch, url, fields, "update ticket")
}

func (c *HTTPClient) AddComment(ctx context.Context, ticketID, text string) error {
	c.logger.Debugf("[ticket: %s] AddComment started", ticketID)

	url := fmt.Sprintf("%s/tickets/%s/comments", c.baseURL, ticketID)
	return c.send(ctx, http.MethodPost, url, map[string]string{"text": text}, "add comment")
}

func (c *HTTPClient) CloseTicket(ctx context.Context, ticketID, reason string) error {
	c.logger.Debugf("[ticket: %s] CloseTicket started", ticketID)

	url := fmt.Sprintf("%s/tickets/%s/close", c.baseURL, ticketID)
	return c.send(ctx, http.MethodPost, url, map[string]string{"reason": reason}, "close ticket")
}

func (c *HTTPClient) send(ctx context.Context, method, url string, payload any, op string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return appers.NewAdapterError("tracking", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return appers.NewAdapterError("tracking", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return appers.NewAdapterError("tracking", err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appers.NewAdapterError("tracking",
			fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode))
	}

	c.logger.Infof("%s ok: %s %s", op, method, url)
	return nil
}

func drain(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
