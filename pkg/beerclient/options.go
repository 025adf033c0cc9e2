package beerclient

import (
	"context"

	"github.com/samvad-hq/beer-catalog-client/pkg/endpoints"
	"github.com/samvad-hq/beer-catalog-client/pkg/logger"
	"github.com/samvad-hq/beer-catalog-client/pkg/publishers"
)

// EventPublisher receives an event after each successful mutation.
// *publishers.Fanout satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Option customizes a RestClient.
type Option func(*RestClient)

// WithRegistry points the client at a different base URL or path layout.
func WithRegistry(reg endpoints.Registry) Option {
	return func(c *RestClient) { c.reg = reg }
}

// WithBaseURL keeps the default paths but changes the base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *RestClient) { c.reg.BaseURL = baseURL }
}

func WithLogger(log logger.Logger) Option {
	return func(c *RestClient) { c.log = logger.Ensure(log) }
}

func WithPublisher(pub EventPublisher) Option {
	return func(c *RestClient) { c.events = pub }
}
