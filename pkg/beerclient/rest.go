package beerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/beer-catalog-client/internal/errbody"
	"github.com/samvad-hq/beer-catalog-client/pkg/deferred"
	"github.com/samvad-hq/beer-catalog-client/pkg/endpoints"
	"github.com/samvad-hq/beer-catalog-client/pkg/httpclient"
	"github.com/samvad-hq/beer-catalog-client/pkg/logger"
	"github.com/samvad-hq/beer-catalog-client/pkg/model"
	"github.com/samvad-hq/beer-catalog-client/pkg/publishers"
)

// RestClient implements Client over a shared httpclient.Client.
type RestClient struct {
	transport httpclient.Client
	reg       endpoints.Registry
	log       logger.Logger
	events    EventPublisher
	closers   []func() error
}

var _ Client = (*RestClient)(nil)

// New builds a client over transport. A nil transport gets a default resty
// transport.
func New(transport httpclient.Client, opts ...Option) *RestClient {
	if transport == nil {
		transport = httpclient.NewRestyClient(httpclient.Options{})
	}
	c := &RestClient{
		transport: transport,
		reg:       endpoints.Default(),
		log:       logger.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// GetBeerByID fetches one beer.
func (c *RestClient) GetBeerByID(ctx context.Context, id uuid.UUID, showInventoryOnHand *bool) *deferred.Result[model.Beer] {
	const op = "GetBeerByID"
	if id == uuid.Nil {
		return deferred.Failed[model.Beer](invalidArg(op, "id", "must be a non-nil UUID", nil))
	}
	path, err := endpoints.Expand(c.reg.BeerPathWithID, map[string]string{endpoints.VarID: id.String()})
	if err != nil {
		return deferred.Failed[model.Beer](invalidArg(op, "id", "cannot build path", err))
	}

	query := url.Values{}
	addBool(query, "showInventoryOnHand", showInventoryOnHand)

	return fetch[model.Beer](ctx, c, op, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.reg.URL(path),
		Query:  query,
	})
}

// GetBeerByUPC fetches the beer carrying upc.
func (c *RestClient) GetBeerByUPC(ctx context.Context, upc string) *deferred.Result[model.Beer] {
	const op = "GetBeerByUPC"
	if strings.TrimSpace(upc) == "" {
		return deferred.Failed[model.Beer](invalidArg(op, "upc", "must not be empty", nil))
	}
	path, err := endpoints.Expand(c.reg.BeerPathWithUPC, map[string]string{endpoints.VarUPC: upc})
	if err != nil {
		return deferred.Failed[model.Beer](invalidArg(op, "upc", "cannot build path", err))
	}

	return fetch[model.Beer](ctx, c, op, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.reg.URL(path),
	})
}

// ListBeers fetches one page of beers.
func (c *RestClient) ListBeers(ctx context.Context, params ListParams) *deferred.Result[model.BeerPagedList] {
	const op = "ListBeers"
	return fetch[model.BeerPagedList](ctx, c, op, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.reg.URL(c.reg.BeerPath),
		Query:  params.values(),
	})
}

// CreateBeer submits a new beer. The result carries the Location of the
// created resource.
func (c *RestClient) CreateBeer(ctx context.Context, beer model.Beer) *deferred.Result[StatusResult] {
	const op = "CreateBeer"
	if err := beer.Validate(); err != nil {
		return deferred.Failed[StatusResult](invalidArg(op, "beer", err.Error(), err))
	}

	return c.mutate(ctx, op, httpclient.Request{
		Method: http.MethodPost,
		URL:    c.reg.URL(c.reg.BeerPath),
		Body:   beer,
	}, func(res StatusResult) publishers.Event {
		id, _ := res.LocationID()
		evt := publishers.NewEvent(publishers.ActionCreated, id, res.StatusCode, &beer)
		evt.Location = res.Location()
		return evt
	})
}

// UpdateBeer replaces the beer stored under id.
func (c *RestClient) UpdateBeer(ctx context.Context, id uuid.UUID, beer model.Beer) *deferred.Result[StatusResult] {
	const op = "UpdateBeer"
	if id == uuid.Nil {
		return deferred.Failed[StatusResult](invalidArg(op, "id", "must be a non-nil UUID", nil))
	}
	if err := beer.Validate(); err != nil {
		return deferred.Failed[StatusResult](invalidArg(op, "beer", err.Error(), err))
	}
	path, err := endpoints.Expand(c.reg.BeerPathWithID, map[string]string{endpoints.VarID: id.String()})
	if err != nil {
		return deferred.Failed[StatusResult](invalidArg(op, "id", "cannot build path", err))
	}

	return c.mutate(ctx, op, httpclient.Request{
		Method: http.MethodPut,
		URL:    c.reg.URL(path),
		Body:   beer,
	}, func(res StatusResult) publishers.Event {
		return publishers.NewEvent(publishers.ActionUpdated, id, res.StatusCode, &beer)
	})
}

// DeleteBeer removes the beer stored under id.
func (c *RestClient) DeleteBeer(ctx context.Context, id uuid.UUID) *deferred.Result[StatusResult] {
	const op = "DeleteBeer"
	if id == uuid.Nil {
		return deferred.Failed[StatusResult](invalidArg(op, "id", "must be a non-nil UUID", nil))
	}
	path, err := endpoints.Expand(c.reg.BeerPathWithID, map[string]string{endpoints.VarID: id.String()})
	if err != nil {
		return deferred.Failed[StatusResult](invalidArg(op, "id", "cannot build path", err))
	}

	return c.mutate(ctx, op, httpclient.Request{
		Method: http.MethodDelete,
		URL:    c.reg.URL(path),
	}, func(res StatusResult) publishers.Event {
		return publishers.NewEvent(publishers.ActionDeleted, id, res.StatusCode, nil)
	})
}

// Close releases resources the client owns, such as publishers built by
// NewFromConfig. The shared transport needs no closing.
func (c *RestClient) Close() error {
	var firstErr error
	for _, fn := range c.closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

// fetch issues req and decodes a 2xx body into T.
func fetch[T any](ctx context.Context, c *RestClient, op string, req httpclient.Request) *deferred.Result[T] {
	return deferred.Go(ctx, func(ctx context.Context) (T, error) {
		var out T
		resp, err := c.do(ctx, op, req)
		if err != nil {
			return out, err
		}
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			terr := &TransportError{Op: op, Method: req.Method, URL: resp.RequestURL(), Err: fmt.Errorf("decode response body: %w", err)}
			c.logFault(terr)
			return out, terr
		}
		return out, nil
	})
}

// mutate issues a bodiless-response request and reports it to the event
// publisher once it succeeded.
func (c *RestClient) mutate(ctx context.Context, op string, req httpclient.Request, event func(StatusResult) publishers.Event) *deferred.Result[StatusResult] {
	return deferred.Go(ctx, func(ctx context.Context) (StatusResult, error) {
		resp, err := c.do(ctx, op, req)
		if err != nil {
			return StatusResult{}, err
		}
		res := StatusResult{StatusCode: resp.StatusCode(), Header: resp.Header().Clone()}
		if res.Header == nil {
			res.Header = http.Header{}
		}
		c.publish(ctx, event(res))
		return res, nil
	})
}

// do sends req and turns anything but a 2xx response into a typed fault.
func (c *RestClient) do(ctx context.Context, op string, req httpclient.Request) (httpclient.Response, error) {
	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		terr := &TransportError{Op: op, Method: req.Method, URL: requestURL(req), Err: err}
		c.logFault(terr)
		return nil, terr
	}

	status := resp.StatusCode()
	c.log.DebugObj("beer request completed", "beer_request", map[string]any{
		"op":         op,
		"method":     req.Method,
		"url":        resp.RequestURL(),
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if status < 200 || status > 299 {
		header := resp.Header().Clone()
		herr := &HTTPError{
			Op:         op,
			Method:     req.Method,
			URL:        resp.RequestURL(),
			StatusCode: status,
			Header:     header,
			Body:       resp.Body(),
			Summary:    errbody.Summarize(header.Get("Content-Type"), resp.Body()),
		}
		c.logFault(herr)
		return nil, herr
	}
	return resp, nil
}

func (c *RestClient) publish(ctx context.Context, evt publishers.Event) {
	if c.events == nil {
		return
	}
	if _, err := c.events.Publish(ctx, evt); err != nil {
		c.log.WarnObj("beer change event not delivered", "beer_event_error", map[string]any{
			"action":  evt.Action,
			"beer_id": evt.BeerID,
			"error":   err.Error(),
		})
	}
}

func (c *RestClient) logFault(err error) {
	c.log.WarnObj("beer request failed", "beer_fault", err.Error())
}

// values adds each parameter only when the caller set it.
func (p ListParams) values() url.Values {
	q := url.Values{}
	addInt(q, "pageNumber", p.PageNumber)
	addInt(q, "pageSize", p.PageSize)
	addString(q, "beerName", p.BeerName)
	addString(q, "beerStyle", p.BeerStyle)
	addBool(q, "showInventoryOnHand", p.ShowInventoryOnHand)
	return q
}

func addInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}

func addString(q url.Values, key string, v *string) {
	if v != nil {
		q.Set(key, *v)
	}
}

func addBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}

func requestURL(req httpclient.Request) string {
	if len(req.Query) == 0 {
		return req.URL
	}
	return req.URL + "?" + req.Query.Encode()
}
