package dialect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fluxforge/fluxforge/fferr"
)

func TestConnectWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	v, err := ConnectWithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestConnectWithRetryExhaustsScheduleAndWrapsConnectionError(t *testing.T) {
	attempts := 0
	_, err := ConnectWithRetry(context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("still down")
	})
	if !errors.Is(err, fferr.ErrConnection) {
		t.Fatalf("expected wrapped ErrConnection, got %v", err)
	}
	if attempts != len(backoffSchedule)+1 {
		t.Fatalf("expected %d attempts, got %d", len(backoffSchedule)+1, attempts)
	}
}

func TestConnectWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := ConnectWithRetry(ctx, func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("down")
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if attempts < 1 {
		t.Fatal("expected at least one attempt before cancellation")
	}
}
