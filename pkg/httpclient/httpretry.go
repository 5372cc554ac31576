package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"caseflow/internal/application/common"
)

type RetryClient struct {
	delegate   HTTPClient
	maxRetries int
	// Override the predicate if specific errors should not be retried.
	ShouldRetry func(*http.Response, error) bool
	logger      *zap.SugaredLogger
}

func NewRetryClient(delegate HTTPClient, maxRetries int, logger *zap.SugaredLogger) *RetryClient {
	if maxRetries == 0 {
		maxRetries = 3
	}

	return &RetryClient{
		delegate:   delegate,
		maxRetries: maxRetries,
		ShouldRetry: func(resp *http.Response, err error) bool {
			// never retry explicit cancellation/deadline
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			if resp == nil {
				return true
			}
			// 5xx and 429 are retry candidates
			return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		},
		logger: logger,
	}
}

func (c *RetryClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	// Make the body replayable: if GetBody is absent, build it once.
	if req.Body != nil && req.GetBody == nil {
		buf, e := io.ReadAll(req.Body)
		if e != nil {
			return nil, e
		}
		_ = req.Body.Close()
		req.ContentLength = int64(len(buf))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
		rc, _ := req.GetBody()
		req.Body = rc
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// fresh body for this attempt
		if req.GetBody != nil {
			rc, e := req.GetBody()
			if e != nil {
				return nil, e
			}
			req.Body = rc
		}

		r := req.Clone(ctx)

		resp, err = c.delegate.Do(ctx, r)

		if !c.ShouldRetry(resp, err) || attempt == c.maxRetries-1 {
			return resp, err
		}

		// release the connection back to the pool before retrying
		if resp != nil && resp.Body != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		backoff := common.NextBackoffWithJitter(attempt + 1)
		if backoff <= 0 {
			backoff = 100_000_000 // 100ms floor
		}

		c.logger.Warnf("retry attempt=%d backoff=%s method=%s url=%s err=%v",
			attempt+1, backoff, req.Method, req.URL.String(), err)

		if err = common.SleepCtx(ctx, backoff); err != nil {
			return resp, fmt.Errorf("retry sleep canceled: %w", err)
		}
	}

	return resp, err
}
