package livequery

import (
	"sync"

	"github.com/DaviAndorid/ArchitectureGuide/internal/query"
)

// Observer is one attachment to a live query.
type Observer struct {
	id      string
	key     query.Key
	updates chan Update
	cache   *Cache
	live    *liveQuery
	once    sync.Once
}

// ID returns the observer's handle, used to correlate log lines.
func (o *Observer) ID() string {
	return o.id
}

// Key returns the canonical key the observer is attached to.
func (o *Observer) Key() query.Key {
	return o.key
}

// Updates streams snapshots in the order they were read. The stream is closed
// when the observer or its cache is closed. A reader that falls more than the
// buffer size behind loses its oldest pending snapshots, never the newest.
func (o *Observer) Updates() <-chan Update {
	return o.updates
}

// Close detaches the observer. It is safe to call more than once.
func (o *Observer) Close() {
	o.once.Do(func() {
		o.cache.detach(o)
	})
}

// deliver must be called with the owning liveQuery's mu held.
func (o *Observer) deliver(update Update) {
	for {
		select {
		case o.updates <- update:
			return
		default:
		}
		select {
		case <-o.updates:
		default:
		}
	}
}
