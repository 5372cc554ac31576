package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"caseflow/internal/appers"
	"caseflow/internal/application/entity"
	"caseflow/pkg/httpclient"
)

// Client notifies the legacy mainframe system that a case originating there
// is finished. Calls are synchronous and replayed as part of a fresh
// completion attempt on failure; the legacy endpoint treats a repeat for an
// already-finished case as success (it answers 409), so replays are safe.
type Client interface {
	MarkCaseFinished(ctx context.Context, caseRef string, outcome entity.Outcome, actorID string) error
}

type HTTPClient struct {
	http    httpclient.HTTPClient
	baseURL string
	logger  *zap.SugaredLogger
}

func NewClient(http httpclient.HTTPClient, baseURL string, logger *zap.SugaredLogger) *HTTPClient {
	return &HTTPClient{http: http, baseURL: baseURL, logger: logger}
}

type markFinishedRequest struct {
	Outcome string `json:"outcome"`
	ActorID string `json:"actorId"`
}

func (c *HTTPClient) MarkCaseFinished(ctx context.Context, caseRef string, outcome entity.Outcome, actorID string) error {
	c.logger.Debugf("[caseRef: %s] MarkCaseFinished started", caseRef)

	body, err := json.Marshal(markFinishedRequest{Outcome: string(outcome), ActorID: actorID})
	if err != nil {
		return appers.NewAdapterError("legacy", err)
	}

	url := fmt.Sprintf("%s/cases/%s/finish", c.baseURL, caseRef)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return appers.NewAdapterError("legacy", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return appers.NewAdapterError("legacy", err)
	}
	defer drain(resp)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.logger.Infof("[caseRef: %s] legacy system notified, outcome=%s", caseRef, outcome)
		return nil
	case resp.StatusCode == http.StatusConflict:
		// already finished on the legacy side, a replay after partial failure
		c.logger.Warnf("[caseRef: %s] legacy case already finished, treating as success", caseRef)
		return nil
	default:
		return appers.NewAdapterError("legacy",
			fmt.Errorf("mark case finished: unexpected status %d", resp.StatusCode))
	}
}

func drain(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
