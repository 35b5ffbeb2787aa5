package client

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusError is returned when an API answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// getter performs GET requests honouring the context deadline, or the
// default timeout when the context has none. Cancelling the context abandons
// the request without waiting for the response.
type getter struct {
	client  *fasthttp.Client
	timeout time.Duration
	headers map[string]string
	logger  *zap.Logger
}

type getResult struct {
	status int
	body   []byte
	err    error
}

func (g *getter) get(ctx context.Context, requestURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.logger.Debug("Sending request", zap.String("url", requestURL))

	results := make(chan getResult, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)
		req.SetRequestURI(requestURL)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")
		for k, v := range g.headers {
			req.Header.Set(k, v)
		}

		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)

		var err error
		if deadline, ok := ctx.Deadline(); ok {
			err = g.client.DoDeadline(req, resp, deadline)
		} else {
			err = g.client.DoTimeout(req, resp, g.timeout)
		}
		if err != nil {
			results <- getResult{err: err}
			return
		}
		results <- getResult{status: resp.StatusCode(), body: append([]byte(nil), resp.Body()...)}
	}()

	var res getResult
	select {
	case <-ctx.Done():
		g.logger.Debug("Request abandoned", zap.String("url", requestURL), zap.Error(ctx.Err()))
		return nil, fmt.Errorf("request to %s abandoned: %w", requestURL, ctx.Err())
	case res = <-results:
	}

	if res.err != nil {
		g.logger.Error("Failed to execute request", zap.String("url", requestURL), zap.Error(res.err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, res.err)
	}
	if res.status != fasthttp.StatusOK {
		g.logger.Warn("API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", res.status),
			zap.ByteString("responseBody", res.body),
		)
		return nil, &StatusError{URL: requestURL, StatusCode: res.status, Body: string(res.body)}
	}
	return res.body, nil
}
