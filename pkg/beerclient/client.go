// Package beerclient is a typed client for the beer catalog service. Every
// operation returns at once with a deferred.Result; the request runs on its
// own goroutine over a transport shared by all calls.
package beerclient

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/samvad-hq/beer-catalog-client/pkg/deferred"
	"github.com/samvad-hq/beer-catalog-client/pkg/model"
)

// Client is the beer catalog contract.
type Client interface {
	GetBeerByID(ctx context.Context, id uuid.UUID, showInventoryOnHand *bool) *deferred.Result[model.Beer]
	GetBeerByUPC(ctx context.Context, upc string) *deferred.Result[model.Beer]
	ListBeers(ctx context.Context, params ListParams) *deferred.Result[model.BeerPagedList]
	CreateBeer(ctx context.Context, beer model.Beer) *deferred.Result[StatusResult]
	UpdateBeer(ctx context.Context, id uuid.UUID, beer model.Beer) *deferred.Result[StatusResult]
	DeleteBeer(ctx context.Context, id uuid.UUID) *deferred.Result[StatusResult]
}

// ListParams holds the optional listing filters. A nil field is left out of
// the request so the server applies its own default.
type ListParams struct {
	PageNumber          *int
	PageSize            *int
	BeerName            *string
	BeerStyle           *string
	ShowInventoryOnHand *bool
}

// StatusResult is the outcome of a call whose response carries no body.
type StatusResult struct {
	StatusCode int
	Header     http.Header
}

// Location returns the Location header, set by the server on create.
func (s StatusResult) Location() string {
	return s.Header.Get("Location")
}

// LocationID parses the beer id from the last path segment of Location.
func (s StatusResult) LocationID() (uuid.UUID, error) {
	loc := strings.TrimSpace(s.Location())
	if loc == "" {
		return uuid.Nil, invalidArg("LocationID", "Location", "header missing", nil)
	}
	if u, err := url.Parse(loc); err == nil {
		loc = u.Path
	}
	return ParseID(path.Base(strings.TrimRight(loc, "/")))
}

func Int(v int) *int          { return &v }
func String(v string) *string { return &v }
func Bool(v bool) *bool       { return &v }
