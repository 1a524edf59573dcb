package pool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFuture_Get(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		future := newFuture()

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.resolve(nil)
		}()

		if err := future.Get(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("error result", func(t *testing.T) {
		future := newFuture()
		expectedErr := errors.New("task failed")

		go future.resolve(expectedErr)

		if err := future.Get(); err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
	})

	t.Run("multiple Get calls return same result", func(t *testing.T) {
		future := newFuture()
		expectedErr := errors.New("once")
		future.resolve(expectedErr)

		err1 := future.Get()
		err2 := future.Get()
		if err1 != err2 {
			t.Errorf("Get calls returned different results: %v, %v", err1, err2)
		}
	})
}

func TestFuture_GetWithContext(t *testing.T) {
	t.Run("resolved before cancel", func(t *testing.T) {
		future := newFuture()
		future.resolve(nil)

		if err := future.GetWithContext(context.Background()); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		future := newFuture()
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		if err := future.GetWithContext(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if future.IsReady() {
			t.Error("giving up must not resolve the future")
		}
	})
}

func TestFuture_GetWithTimeout(t *testing.T) {
	t.Run("times out", func(t *testing.T) {
		future := newFuture()

		start := time.Now()
		err := future.GetWithTimeout(30 * time.Millisecond)
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if time.Since(start) < 30*time.Millisecond {
			t.Error("returned before the timeout elapsed")
		}
	})

	t.Run("resolves in time", func(t *testing.T) {
		future := newFuture()
		expectedErr := errors.New("late but fine")

		go func() {
			time.Sleep(10 * time.Millisecond)
			future.resolve(expectedErr)
		}()

		if err := future.GetWithTimeout(time.Second); err != expectedErr {
			t.Errorf("expected %v, got %v", expectedErr, err)
		}
	})

	t.Run("non-positive timeout waits", func(t *testing.T) {
		future := newFuture()
		go func() {
			time.Sleep(10 * time.Millisecond)
			future.resolve(nil)
		}()

		if err := future.GetWithTimeout(0); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestFuture_IsReady(t *testing.T) {
	future := newFuture()
	if future.IsReady() {
		t.Error("future should not be ready before resolve")
	}

	future.resolve(nil)
	if !future.IsReady() {
		t.Error("future should be ready after resolve")
	}

	select {
	case <-future.Done():
	default:
		t.Error("Done channel should be closed after resolve")
	}
}
