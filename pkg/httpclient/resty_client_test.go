package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestRestyClientDoSendsQueryAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.URL.RawQuery; got != "pageSize=10" {
			t.Errorf("RawQuery = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "beer-test" {
			t.Errorf("User-Agent = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		if err := json.Unmarshal(raw, &body); err != nil || body["beerName"] != "Mango Bobs" {
			t.Errorf("unexpected body %s", raw)
		}
		w.Header().Set("Location", "/api/v1/beer/1")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewRestyClient(Options{Timeout: 2 * time.Second, UserAgent: "beer-test"})
	resp, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		URL:    srv.URL + "/api/v1/beer",
		Query:  url.Values{"pageSize": []string{"10"}},
		Body:   map[string]string{"beerName": "Mango Bobs"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("StatusCode = %d", resp.StatusCode())
	}
	if got := resp.Header().Get("Location"); got != "/api/v1/beer/1" {
		t.Fatalf("Location = %q", got)
	}
	if got := resp.RequestURL(); got != srv.URL+"/api/v1/beer?pageSize=10" {
		t.Fatalf("RequestURL = %q", got)
	}
}

func TestRestyClientDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewRestyClient(Options{Timeout: time.Second})
	resp, err := client.Do(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusServiceUnavailable || calls != 1 {
		t.Fatalf("status=%d calls=%d", resp.StatusCode(), calls)
	}
}

func TestRestyClientHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewRestyClient(Options{})
	if _, err := client.Do(ctx, Request{URL: srv.URL}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
