package deferred

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestGoResolvesValue(t *testing.T) {
	r := Go(context.Background(), func(context.Context) (int, error) { return 42, nil })

	got, err := r.Await(context.Background())
	if err != nil || got != 42 {
		t.Fatalf("Await = %d, %v", got, err)
	}
	select {
	case <-r.Done():
	default:
		t.Fatalf("Done should be closed after Await returned")
	}
}

func TestGoReturnsImmediately(t *testing.T) {
	release := make(chan struct{})
	r := Go(context.Background(), func(context.Context) (string, error) {
		<-release
		return "late", nil
	})

	select {
	case <-r.Done():
		t.Fatalf("result completed before the operation finished")
	default:
	}
	close(release)
	if got, _ := r.Get(); got != "late" {
		t.Fatalf("Get = %q", got)
	}
}

func TestCancelAbortsOperation(t *testing.T) {
	started := make(chan struct{})
	r := Go(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started
	r.Cancel()

	_, err := r.Await(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAwaitGivesUpWithoutCancelling(t *testing.T) {
	release := make(chan struct{})
	r := Go(context.Background(), func(ctx context.Context) (int, error) {
		select {
		case <-release:
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(release)
	if got, err := r.Get(); err != nil || got != 1 {
		t.Fatalf("operation should still complete, got %d, %v", got, err)
	}
}

func TestMapAndThenCompose(t *testing.T) {
	ids := Resolved([]int{7, 8})
	first := Map(ids, func(v []int) (int, error) { return v[0], nil })
	detail := Then(first, func(id int) *Result[string] {
		return Go(context.Background(), func(context.Context) (string, error) {
			return "beer-" + strconv.Itoa(id), nil
		})
	})

	got, err := detail.Await(context.Background())
	if err != nil || got != "beer-7" {
		t.Fatalf("Then = %q, %v", got, err)
	}
}

func TestMapSkipsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	r := Map(Failed[int](boom), func(int) (int, error) {
		called = true
		return 1, nil
	})
	if _, err := r.Get(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called {
		t.Fatalf("map function must not run on failure")
	}
}

func TestRecoverSubstitutesFallback(t *testing.T) {
	boom := errors.New("not found")
	r := Recover(Failed[int](boom), func(err error) (int, error) {
		if errors.Is(err, boom) {
			return 404, nil
		}
		return 0, err
	})
	got, err := r.Get()
	if err != nil || got != 404 {
		t.Fatalf("Recover = %d, %v", got, err)
	}

	kept := Recover(Resolved(1), func(error) (int, error) { return 2, nil })
	if got, _ := kept.Get(); got != 1 {
		t.Fatalf("Recover must not touch successes, got %d", got)
	}
}

func TestCancellingChainCancelsSource(t *testing.T) {
	started := make(chan struct{})
	src := Go(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	mapped := Map(src, func(v int) (int, error) { return v + 1, nil })
	<-started
	mapped.Cancel()

	if _, err := src.Get(); !errors.Is(err, context.Canceled) {
		t.Fatalf("source should be cancelled, got %v", err)
	}
	if _, err := mapped.Get(); !errors.Is(err, context.Canceled) {
		t.Fatalf("mapped should be cancelled, got %v", err)
	}
}

func TestThenFailsOnNilResult(t *testing.T) {
	r := Then(Resolved(1), func(int) *Result[string] { return nil })
	if _, err := r.Get(); !errors.Is(err, ErrNilResult) {
		t.Fatalf("expected ErrNilResult, got %v", err)
	}
}
