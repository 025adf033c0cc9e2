package beerclient

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/beer-catalog-client/pkg/config"
	"github.com/samvad-hq/beer-catalog-client/pkg/endpoints"
	"github.com/samvad-hq/beer-catalog-client/pkg/httpclient"
	"github.com/samvad-hq/beer-catalog-client/pkg/logger"
	"github.com/samvad-hq/beer-catalog-client/pkg/publishers"
)

// logOutput receives the logs of clients built without a caller logger.
var logOutput io.Writer = os.Stdout

// NewFromConfig wires a RestClient from loaded configuration: the endpoint
// registry, a shared resty transport and, when a publishers file is set, a
// change event fanout. A nil log gets a zap JSON logger at cfg.LogLevel.
// Call Close on the returned client when done.
func NewFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*RestClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var closers []func() error
	if log == nil {
		zl, err := logger.NewWriter(cfg.LogLevel, logOutput)
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		log = zl
		// stdout cannot be fsynced on every platform
		closers = append(closers, func() error {
			_ = zl.Sync()
			return nil
		})
	}

	reg := endpoints.Default()
	if cfg.EndpointsFile != "" {
		loaded, err := endpoints.LoadRegistry(cfg.EndpointsFile)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}
	if cfg.BaseURL != "" {
		reg.BaseURL = cfg.BaseURL
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	transport := httpclient.NewRestyClient(httpclient.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	client := New(transport, WithRegistry(reg), WithLogger(log))
	client.closers = append(client.closers, closers...)

	if cfg.PublishersFile != "" {
		fanout, err := publishers.LoadFanout(ctx, cfg.PublishersFile, log)
		if err != nil {
			return nil, err
		}
		client.events = fanout
		client.closers = append(client.closers, fanout.Close)
		log.InfoObj("beer change events enabled", "publishers", fanout.Size())
	}

	log.InfoObj("beer client ready", "base_url", reg.BaseURL)
	return client, nil
}
