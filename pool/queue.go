package pool

import "sync"

// queueNode is a single link in the shared queue.
type queueNode struct {
	msg  message
	next *queueNode
}

// sharedQueue is an unbounded multi-producer multi-consumer FIFO of control
// messages backed by a linked list.
//
// Producers never block. Consumers block on ready while the queue is empty.
// Once sealed, the queue rejects further messages but still hands out the
// ones it holds, so a batch appended together with the seal is always the
// last thing consumers see.
type sharedQueue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	head   *queueNode
	tail   *queueNode
	size   int
	sealed bool
}

// newSharedQueue creates an empty queue and returns its two ends.
func newSharedQueue() (sender, *receiver) {
	q := &sharedQueue{}
	q.ready = sync.NewCond(&q.mu)
	return sender{q: q}, &receiver{q: q}
}

// push appends msgs in order. With seal set, the queue is sealed in the same
// critical section, so no other producer can slip a message in behind them.
func (q *sharedQueue) push(seal bool, msgs ...message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sealed {
		return errQueueClosed
	}

	for _, m := range msgs {
		n := &queueNode{msg: m}
		if q.tail == nil {
			q.head = n
		} else {
			q.tail.next = n
		}
		q.tail = n
		q.size++
	}
	q.sealed = seal

	switch {
	case seal || len(msgs) > 1:
		q.ready.Broadcast()
	case len(msgs) == 1:
		q.ready.Signal()
	}
	return nil
}

// pop removes the oldest message, blocking while the queue is empty.
// It returns errQueueClosed only when the queue is sealed and drained.
func (q *sharedQueue) pop() (message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 {
		if q.sealed {
			return message{}, errQueueClosed
		}
		q.ready.Wait()
	}

	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.size--

	msg := n.msg
	n.next = nil
	n.msg = message{}
	return msg, nil
}

// len returns the number of queued messages.
func (q *sharedQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// sender is the producing end of a sharedQueue. It is a plain value: copies
// share the same queue and may be used from any goroutine.
type sender struct {
	q *sharedQueue
}

func (s sender) send(m message) error {
	return s.q.push(false, m)
}

// sendFinal appends msgs and seals the queue atomically.
func (s sender) sendFinal(msgs []message) error {
	return s.q.push(true, msgs...)
}

func (s sender) depth() int {
	return s.q.len()
}

// receiver is the single consuming end of a sharedQueue, shared by every
// worker of a pool. Its mutex admits one worker at a time to the dequeue step
// and is released before the dequeued message is acted upon.
type receiver struct {
	mu sync.Mutex
	q  *sharedQueue
}

func (r *receiver) recv() (message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.q.pop()
}

func (r *receiver) depth() int {
	return r.q.len()
}
