package ffmpegencoder

import (
	"sync"

	"github.com/user/frameconv/pkg/ports"
)

// eventQueue decouples the stdout reader from the consumer. push never
// blocks, so ffmpeg keeps draining while the caller is busy writing frames.
type eventQueue struct {
	mu      sync.Mutex
	items   []ports.EncoderEvent
	closed  bool
	notify  chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		notify:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

func (q *eventQueue) push(ev ports.EncoderEvent) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.wake()
}

// close marks the end of the stream. Queued events are still delivered.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// stop abandons delivery of anything still queued.
func (q *eventQueue) stop() {
	q.once.Do(func() { close(q.stopped) })
}

func (q *eventQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// forward delivers queued events to out in order and closes out once the
// queue is closed and empty, or when stop is called.
func (q *eventQueue) forward(out chan<- ports.EncoderEvent) {
	defer close(out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-q.notify:
				continue
			case <-q.stopped:
				return
			}
		}
		ev := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case out <- ev:
		case <-q.stopped:
			return
		}
	}
}
