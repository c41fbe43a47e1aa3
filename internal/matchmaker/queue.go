package matchmaker

import "sync"

// queue is one tier's FIFO of waiting uids. Producers signal the condition
// variable on push; the tier worker sleeps in awaitPair until two waiters
// exist. The worker loops on the length, not a flag, because cancellers can
// drain the queue between signal and wake.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	uids   []uint64
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends uid unless it is already waiting or the queue is closed.
// Re-adding a waiting uid is an idempotent no-op so a double match_start
// cannot pair a player with themselves.
func (q *queue) push(uid uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	for _, v := range q.uids {
		if v == uid {
			return
		}
	}
	q.uids = append(q.uids, uid)
	q.cond.Signal()
}

// pop removes and returns the head of the queue. It fails when a canceller
// emptied the queue after the worker woke up.
func (q *queue) pop() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.uids) == 0 {
		return 0, false
	}
	uid := q.uids[0]
	q.uids = q.uids[1:]
	return uid, true
}

// remove deletes the first occurrence of uid. A miss reports false, which
// callers treat as an already-satisfied cancel.
func (q *queue) remove(uid uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, v := range q.uids {
		if v == uid {
			q.uids = append(q.uids[:i], q.uids[i+1:]...)
			return true
		}
	}
	return false
}

// awaitPair blocks until at least two uids wait or the queue closes, and
// reports whether the worker should keep running.
func (q *queue) awaitPair() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.uids) < 2 && !q.closed {
		q.cond.Wait()
	}
	return !q.closed
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
