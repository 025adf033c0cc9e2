// Package fakecatalog runs an in-process beer catalog service that speaks
// the same HTTP contract as the real one. It keeps client tests hermetic.
package fakecatalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samvad-hq/beer-catalog-client/pkg/endpoints"
	"github.com/samvad-hq/beer-catalog-client/pkg/model"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 25
	MaxPageSize       = 1000
)

// RecordedRequest is what the server saw of one incoming request.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
}

// Fault is a canned response returned instead of the next request's real one.
type Fault struct {
	Status      int
	ContentType string
	Body        string
}

// Server is a running fake catalog.
type Server struct {
	srv   *httptest.Server
	store *store

	mu       sync.Mutex
	requests []RecordedRequest
	faults   []Fault
}

// New starts a fake catalog on a loopback port.
func New() (*Server, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}

	s := &Server{store: st}
	s.srv = httptest.NewServer(s.router())
	return s, nil
}

// URL is the base URL to point a client at.
func (s *Server) URL() string { return s.srv.URL }

// Close stops the server and drops the catalog.
func (s *Server) Close() error {
	s.srv.Close()
	return s.store.close()
}

// Seed inserts beers directly and returns them with their assigned ids.
func (s *Server) Seed(ctx context.Context, beers ...model.Beer) ([]model.Beer, error) {
	out := make([]model.Beer, 0, len(beers))
	for _, b := range beers {
		created, err := s.store.create(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

// Lookup reads a beer straight from the store, bypassing HTTP.
func (s *Server) Lookup(ctx context.Context, id uuid.UUID) (model.Beer, bool) {
	b, err := s.store.get(ctx, id)
	return b, err == nil
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, if any.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// InjectFault queues a canned response for the next request.
func (s *Server) InjectFault(f Fault) {
	s.mu.Lock()
	s.faults = append(s.faults, f)
	s.mu.Unlock()
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.record, s.injectFaults)

	r.GET(endpoints.BeerPath, s.listBeers)
	r.POST(endpoints.BeerPath, s.createBeer)
	r.GET(endpoints.BeerPath+"/:id", s.getBeer)
	r.PUT(endpoints.BeerPath+"/:id", s.updateBeer)
	r.DELETE(endpoints.BeerPath+"/:id", s.deleteBeer)
	r.GET("/api/v1/beerUpc/:upc", s.getBeerByUPC)
	return r
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
		Query:    c.Request.URL.Query(),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) injectFaults(c *gin.Context) {
	s.mu.Lock()
	var fault *Fault
	if len(s.faults) > 0 {
		f := s.faults[0]
		s.faults = s.faults[1:]
		fault = &f
	}
	s.mu.Unlock()

	if fault == nil {
		c.Next()
		return
	}
	ct := fault.ContentType
	if ct == "" {
		ct = "text/plain; charset=utf-8"
	}
	c.Data(fault.Status, ct, []byte(fault.Body))
	c.Abort()
}

func (s *Server) listBeers(c *gin.Context) {
	page := intQuery(c, "pageNumber", DefaultPageNumber)
	if page < 1 {
		page = DefaultPageNumber
	}
	size := intQuery(c, "pageSize", DefaultPageSize)
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	beers, total, err := s.store.list(c.Request.Context(), listQuery{
		Page:  page,
		Size:  size,
		Name:  c.Query("beerName"),
		Style: c.Query("beerStyle"),
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !showInventory(c) {
		for i := range beers {
			beers[i].QuantityOnHand = nil
		}
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	c.JSON(http.StatusOK, model.BeerPagedList{
		Content:          beers,
		Number:           page,
		Size:             size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(beers),
		First:            page == 1,
		Last:             page >= totalPages,
		Empty:            len(beers) == 0,
	})
}

func (s *Server) getBeer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := s.store.get(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if !showInventory(c) {
		b.QuantityOnHand = nil
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) getBeerByUPC(c *gin.Context) {
	b, err := s.store.getByUPC(c.Request.Context(), c.Param("upc"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) createBeer(c *gin.Context) {
	b, ok := bindBeer(c)
	if !ok {
		return
	}
	created, err := s.store.create(c.Request.Context(), b)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.Header("Location", "http://"+c.Request.Host+endpoints.BeerPath+"/"+created.ID.String())
	c.Status(http.StatusCreated)
}

func (s *Server) updateBeer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, ok := bindBeer(c)
	if !ok {
		return
	}
	if err := s.store.update(c.Request.Context(), id, b); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteBeer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.delete(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindBeer(c *gin.Context) (model.Beer, bool) {
	var b model.Beer
	if err := c.ShouldBindJSON(&b); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return model.Beer{}, false
	}
	if err := b.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return model.Beer{}, false
	}
	return b, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid beer id")
		return uuid.Nil, false
	}
	return id, true
}

func showInventory(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.Query("showInventoryOnHand"))
	return err == nil && v
}

func intQuery(c *gin.Context, key string, def int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, errNotFound) {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	writeError(c, http.StatusInternalServerError, err.Error())
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  status,
		"error":   http.StatusText(status),
		"message": msg,
		"path":    c.Request.URL.Path,
	})
}
