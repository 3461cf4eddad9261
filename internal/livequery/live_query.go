package livequery

import (
	"context"
	"sync"

	"github.com/DaviAndorid/ArchitectureGuide/internal/notify"
	"github.com/DaviAndorid/ArchitectureGuide/internal/query"
	"go.uber.org/zap"
)

// liveQuery is the single underlying subscription for one key. Its run goroutine
// is the only sender on observer streams, and it sends while holding mu.
type liveQuery struct {
	key      query.Key
	executor Executor
	logger   *zap.Logger

	mu        sync.Mutex
	observers map[*Observer]struct{}
	last      Update
	hasLast   bool

	wake     chan struct{}
	cancel   context.CancelFunc
	cleanups []func()
	stopOnce sync.Once
}

func (q *liveQuery) attach(observer *Observer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.observers[observer] = struct{}{}
	if q.hasLast {
		observer.deliver(q.last)
	}
}

func (q *liveQuery) detach(observer *Observer) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.observers[observer]; ok {
		delete(q.observers, observer)
		close(observer.updates)
	}
	return len(q.observers)
}

func (q *liveQuery) observerCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.observers)
}

func (q *liveQuery) stop() {
	q.stopOnce.Do(func() {
		q.cancel()
		for _, cleanup := range q.cleanups {
			cleanup()
		}
		q.logger.Debug("live query stopped", zap.String("query", q.key.String()))
	})
}

// shutdown stops the query and closes every remaining observer stream.
func (q *liveQuery) shutdown() {
	q.stop()
	q.mu.Lock()
	defer q.mu.Unlock()
	for observer := range q.observers {
		delete(q.observers, observer)
		close(observer.updates)
	}
}

// forward turns change messages into wakeups. Messages that arrive before the
// store is ready are discarded; the first read after readiness covers them.
func (q *liveQuery) forward(ctx context.Context, ready <-chan struct{}, stream <-chan notify.ChangeMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-stream:
			if !ok {
				return
			}
			select {
			case <-ready:
			default:
				q.logger.Debug("change dropped before store ready",
					zap.String("query", q.key.String()),
					zap.String("table", message.Topic))
				continue
			}
			select {
			case q.wake <- struct{}{}:
			default:
			}
		}
	}
}

func (q *liveQuery) run(ctx context.Context, ready <-chan struct{}) {
	select {
	case <-ready:
	case <-ctx.Done():
		return
	}
	q.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
			q.refresh(ctx)
		}
	}
}

func (q *liveQuery) refresh(ctx context.Context) {
	result, err := q.executor.Execute(ctx, q.key)
	if ctx.Err() != nil {
		return
	}
	update := Update{Result: result, Err: err}
	if err != nil {
		q.logger.Warn("live query execution failed", zap.String("query", q.key.String()), zap.Error(err))
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.hasLast && q.last.same(update) {
		return
	}
	q.last = update
	q.hasLast = true
	for observer := range q.observers {
		observer.deliver(update)
	}
}
