package livequery

import (
	"context"
	"errors"
	"sync"

	"github.com/DaviAndorid/ArchitectureGuide/internal/notify"
	"github.com/DaviAndorid/ArchitectureGuide/internal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultBufferSize = 16

var (
	// ErrCacheClosed indicates an Observe call after Close.
	ErrCacheClosed = errors.New("livequery: cache closed")

	errMissingExecutor  = errors.New("livequery: executor is required")
	errMissingBus       = errors.New("livequery: change bus is required")
	errMissingReadiness = errors.New("livequery: readiness source is required")
)

// Executor runs one snapshot of a query.
type Executor interface {
	Execute(ctx context.Context, key query.Key) (query.Result, error)
}

// ChangeSource delivers table change messages.
type ChangeSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan notify.ChangeMessage, func())
}

// ReadinessSource exposes a channel closed once the store may be read.
type ReadinessSource interface {
	Ready() <-chan struct{}
}

// Update is one emission of a live query. Err is set when the snapshot could not be read.
type Update struct {
	Result query.Result
	Err    error
}

func (u Update) same(other Update) bool {
	if (u.Err == nil) != (other.Err == nil) {
		return false
	}
	if u.Err != nil {
		return u.Err.Error() == other.Err.Error()
	}
	return u.Result.Equal(other.Result)
}

// CacheConfig describes the dependencies of a Cache.
type CacheConfig struct {
	Executor   Executor
	Changes    ChangeSource
	Readiness  ReadinessSource
	Logger     *zap.Logger
	BufferSize int
}

// Cache keeps at most one live query per canonical key and multiplexes it to observers.
type Cache struct {
	mu         sync.Mutex
	queries    map[query.Key]*liveQuery
	executor   Executor
	changes    ChangeSource
	readiness  ReadinessSource
	logger     *zap.Logger
	bufferSize int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
}

// NewCache validates cfg and returns an empty cache.
func NewCache(cfg CacheConfig) (*Cache, error) {
	if cfg.Executor == nil {
		return nil, errMissingExecutor
	}
	if cfg.Changes == nil {
		return nil, errMissingBus
	}
	if cfg.Readiness == nil {
		return nil, errMissingReadiness
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		queries:    make(map[query.Key]*liveQuery),
		executor:   cfg.Executor,
		changes:    cfg.Changes,
		readiness:  cfg.Readiness,
		logger:     logger,
		bufferSize: bufferSize,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Observe attaches a new observer to key, starting the live query on first attach.
// The caller must Close the observer to release it.
func (c *Cache) Observe(key query.Key) (*Observer, error) {
	key = key.Normalize()
	if err := key.Validate(); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}
	live, ok := c.queries[key]
	if !ok {
		live = c.startQuery(key)
		c.queries[key] = live
	}
	observer := &Observer{
		id:      id.String(),
		key:     key,
		updates: make(chan Update, c.bufferSize),
		cache:   c,
		live:    live,
	}
	live.attach(observer)
	c.logger.Debug("observer attached",
		zap.String("query", key.String()),
		zap.String("observer_id", observer.id),
		zap.Int("observers", live.observerCount()))
	return observer, nil
}

// ActiveQueries reports how many underlying live queries exist.
func (c *Cache) ActiveQueries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

// Close stops every live query, closes every observer stream and waits for the
// background goroutines to exit.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	queries := c.queries
	c.queries = make(map[query.Key]*liveQuery)
	c.mu.Unlock()

	for _, live := range queries {
		live.shutdown()
	}
	c.cancel()
	c.wg.Wait()
}

func (c *Cache) detach(observer *Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := observer.live
	remaining := live.detach(observer)
	c.logger.Debug("observer detached",
		zap.String("query", observer.key.String()),
		zap.String("observer_id", observer.id),
		zap.Int("observers", remaining))
	if remaining > 0 {
		return
	}
	if current, ok := c.queries[live.key]; ok && current == live {
		delete(c.queries, live.key)
	}
	live.stop()
}

// startQuery must be called with c.mu held.
func (c *Cache) startQuery(key query.Key) *liveQuery {
	ctx, cancel := context.WithCancel(c.ctx)
	live := &liveQuery{
		key:       key,
		executor:  c.executor,
		logger:    c.logger,
		observers: make(map[*Observer]struct{}),
		wake:      make(chan struct{}, 1),
		cancel:    cancel,
	}
	ready := c.readiness.Ready()
	for _, table := range key.Tables() {
		stream, cleanup := c.changes.Subscribe(ctx, table)
		live.cleanups = append(live.cleanups, cleanup)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			live.forward(ctx, ready, stream)
		}()
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		live.run(ctx, ready)
	}()
	c.logger.Debug("live query started", zap.String("query", key.String()))
	return live
}
