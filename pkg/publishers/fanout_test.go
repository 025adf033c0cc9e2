package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubPublisher struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

type closingPublisher struct {
	stubPublisher
}

func (c *closingPublisher) Close() error {
	c.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
		nil,
	})
	if fanout.Size() != 2 {
		t.Fatalf("expected nil publishers to be dropped, size=%d", fanout.Size())
	}

	id := uuid.New()
	count, err := fanout.Publish(context.Background(), NewEvent(ActionCreated, id, 201, nil))
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "beer.created") || !strings.Contains(msg, id.String()) || !strings.Contains(msg, "http[bad]") {
		t.Fatalf("error should name the action, beer and sink, got %q", msg)
	}
}

type slowPublisher struct {
	stubPublisher
	release chan struct{}
	started chan struct{}
}

func (s *slowPublisher) Publish(context.Context, Event) error {
	close(s.started)
	select {
	case <-s.release:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("not released")
	}
}

func TestFanoutDeliversConcurrently(t *testing.T) {
	slow := &slowPublisher{stubPublisher: stubPublisher{id: "slow", typ: TypeHTTP}, release: make(chan struct{}), started: make(chan struct{})}
	releaser := &releasingPublisher{stubPublisher: stubPublisher{id: "fast", typ: TypeHTTP}, slow: slow}
	fanout := NewFanout([]Publisher{slow, releaser})

	count, err := fanout.Publish(context.Background(), Event{Action: ActionUpdated})
	if err != nil || count != 2 {
		t.Fatalf("Publish = %d, %v", count, err)
	}
}

// releasingPublisher unblocks slow once slow has started, which only happens
// when both sinks run at the same time.
type releasingPublisher struct {
	stubPublisher
	slow *slowPublisher
}

func (r *releasingPublisher) Publish(context.Context, Event) error {
	select {
	case <-r.slow.started:
		close(r.slow.release)
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("slow sink never started")
	}
}

func TestFanoutCloseClosesClosers(t *testing.T) {
	closer := &closingPublisher{stubPublisher{id: "ps", typ: TypePubSub}}
	fanout := NewFanout([]Publisher{closer, &stubPublisher{id: "h", typ: TypeHTTP}})
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closer.closed {
		t.Fatalf("expected closer to be closed")
	}
}

func TestNilFanoutIsInert(t *testing.T) {
	var f *Fanout
	if n, err := f.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout Publish = %d, %v", n, err)
	}
	if f.Size() != 0 || f.Close() != nil {
		t.Fatalf("nil fanout should be empty")
	}
}
