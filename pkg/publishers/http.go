package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/beer-catalog-client/internal/errbody"
	"github.com/samvad-hq/beer-catalog-client/pkg/httpclient"
	"github.com/samvad-hq/beer-catalog-client/pkg/logger"
)

// httpPublisher posts events as JSON to a webhook.
type httpPublisher struct {
	id        string
	method    string
	url       string
	headers   map[string]string
	transport httpclient.Client
	log       logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	return &httpPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		transport: httpclient.NewRestyClient(httpclient.Options{
			Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		}),
		log: logger.Ensure(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.transport.Do(ctx, httpclient.Request{
		Method: h.method,
		URL:    h.url,
		Header: h.headers,
		Body:   evt,
	})
	if err != nil {
		h.logFailure(err)
		return fmt.Errorf("http request: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status > 299 {
		summary := errbody.Summarize(resp.Header().Get("Content-Type"), resp.Body())
		err := fmt.Errorf("http response status %d: %s", status, summary)
		h.logFailure(err)
		return err
	}

	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"action":       evt.Action,
		"status":       resp.StatusCode(),
	})
	return nil
}

func (h *httpPublisher) logFailure(err error) {
	h.log.ErrorObj("http publisher send failed", "publisher_http_error", map[string]any{
		"publisher_id": h.id,
		"error":        err.Error(),
	})
}
