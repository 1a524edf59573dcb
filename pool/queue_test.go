package pool

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSharedQueue_FIFO(t *testing.T) {
	tx, rx := newSharedQueue()

	var order []int
	for i := range 10 {
		if err := tx.send(newTaskMessage(func() { order = append(order, i) })); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	if d := rx.depth(); d != 10 {
		t.Fatalf("expected depth 10, got %d", d)
	}

	for range 10 {
		msg, err := rx.recv()
		if err != nil {
			t.Fatalf("recv failed: %v", err)
		}
		msg.task()
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("position %d: expected %d, got %d", i, i, v)
		}
	}
	if d := rx.depth(); d != 0 {
		t.Errorf("expected empty queue, got %d", d)
	}
}

func TestSharedQueue_SealRejectsAndDrains(t *testing.T) {
	tx, rx := newSharedQueue()

	_ = tx.send(newTaskMessage(func() {}))
	if err := tx.sendFinal([]message{terminateMessage(), terminateMessage()}); err != nil {
		t.Fatalf("sendFinal failed: %v", err)
	}

	if err := tx.send(newTaskMessage(func() {})); !errors.Is(err, errQueueClosed) {
		t.Errorf("expected errQueueClosed after seal, got %v", err)
	}
	if err := tx.sendFinal([]message{terminateMessage()}); !errors.Is(err, errQueueClosed) {
		t.Errorf("expected errQueueClosed on a second seal, got %v", err)
	}

	want := []messageKind{msgNewTask, msgTerminate, msgTerminate}
	for i, kind := range want {
		msg, err := rx.recv()
		if err != nil {
			t.Fatalf("recv %d failed: %v", i, err)
		}
		if msg.kind != kind {
			t.Errorf("message %d: expected %s, got %s", i, kind, msg.kind)
		}
	}

	if _, err := rx.recv(); !errors.Is(err, errQueueClosed) {
		t.Errorf("expected errQueueClosed once drained, got %v", err)
	}
}

func TestSharedQueue_RecvBlocksUntilSend(t *testing.T) {
	tx, rx := newSharedQueue()

	got := make(chan messageKind, 1)
	go func() {
		msg, err := rx.recv()
		if err != nil {
			t.Errorf("recv failed: %v", err)
		}
		got <- msg.kind
	}()

	select {
	case <-got:
		t.Fatal("recv returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}

	_ = tx.send(terminateMessage())

	select {
	case kind := <-got:
		if kind != msgTerminate {
			t.Errorf("expected terminate, got %s", kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("recv did not wake up after send")
	}
}

func TestSharedQueue_SealWakesEveryWaiter(t *testing.T) {
	tx, rx := newSharedQueue()

	const waiters = 5
	var wg sync.WaitGroup
	results := make(chan messageKind, waiters)
	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg, err := rx.recv()
			if err != nil {
				t.Errorf("recv failed: %v", err)
				return
			}
			results <- msg.kind
		}()
	}

	time.Sleep(20 * time.Millisecond)

	terminate := make([]message, waiters)
	for i := range terminate {
		terminate[i] = terminateMessage()
	}
	_ = tx.sendFinal(terminate)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not every waiter woke up after seal")
	}

	close(results)
	n := 0
	for kind := range results {
		if kind != msgTerminate {
			t.Errorf("expected terminate, got %s", kind)
		}
		n++
	}
	if n != waiters {
		t.Errorf("expected %d terminates, got %d", waiters, n)
	}
}

func TestSharedQueue_ConcurrentProducers(t *testing.T) {
	tx, rx := newSharedQueue()

	const (
		producers = 8
		perProd   = 500
	)

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProd {
				_ = tx.send(newTaskMessage(func() {}))
			}
		}()
	}
	wg.Wait()

	if d := rx.depth(); d != producers*perProd {
		t.Fatalf("expected depth %d, got %d", producers*perProd, d)
	}

	_ = tx.sendFinal(nil)
	n := 0
	for {
		if _, err := rx.recv(); err != nil {
			break
		}
		n++
	}
	if n != producers*perProd {
		t.Errorf("expected %d messages, got %d", producers*perProd, n)
	}
}

func TestMessageKind_String(t *testing.T) {
	tests := []struct {
		kind messageKind
		want string
	}{
		{msgNewTask, "new_task"},
		{msgTerminate, "terminate"},
		{messageKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d: expected %q, got %q", tt.kind, tt.want, got)
		}
	}
}
