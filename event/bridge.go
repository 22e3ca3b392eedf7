package event

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/quickshop/bothub/log"

	"github.com/lithammer/shortuuid/v4"
)

// Handler is called for every published event that matches the target it has
// been subscribed for. A returned error is logged.
type Handler func(e ActionEvent) error

// CancelFunc removes a subscription. Calling it more than once has no effect.
type CancelFunc func()

type Config struct {
	Logger log.Logger
}

// Stats are counters since the bridge has been created.
type Stats struct {
	Published   map[Kind]uint64
	Delivered   uint64 // Handler invocations
	Dropped     uint64 // Events without any matching subscriber
	Failed      uint64 // Handler invocations that returned an error or panicked
	Subscribers int
}

type subscription struct {
	id      string
	handler Handler
}

// Bridge delivers ActionEvents synchronously to the handlers subscribed for
// the event's target. Filtering by target happens in the bridge, handlers only
// see events for their own target.
type Bridge struct {
	subscriber map[Target][]subscription
	lock       sync.RWMutex

	logger log.Logger

	stats     Stats
	statsLock sync.Mutex
}

func NewBridge(config Config) *Bridge {
	b := &Bridge{
		subscriber: map[Target][]subscription{},
		logger:     config.Logger,
		stats: Stats{
			Published: map[Kind]uint64{},
		},
	}

	if b.logger == nil {
		b.logger = log.New("")
	}

	return b
}

// Publish calls every handler subscribed for e.Target, in the order of
// subscription, and returns the number of handlers that have been called.
// Events with an unknown kind are dropped. Errors and panics of a handler are
// logged and don't keep the remaining handlers from being called.
func (b *Bridge) Publish(e ActionEvent) int {
	if !e.Kind.IsValid() {
		b.logger.Warn().WithField("event", e.String()).Log("Dropped event with unknown kind")
		b.count(func(s *Stats) { s.Dropped++ })
		return 0
	}

	b.lock.RLock()
	subscriptions := make([]subscription, len(b.subscriber[e.Target]))
	copy(subscriptions, b.subscriber[e.Target])
	b.lock.RUnlock()

	b.count(func(s *Stats) {
		s.Published[e.Kind]++
		if len(subscriptions) == 0 {
			s.Dropped++
		}
	})

	if len(subscriptions) == 0 {
		b.logger.Debug().WithField("event", e.String()).Log("No subscriber, event dropped")
		return 0
	}

	for _, sub := range subscriptions {
		err := b.deliver(sub.handler, e)

		b.count(func(s *Stats) {
			s.Delivered++
			if err != nil {
				s.Failed++
			}
		})

		if err != nil {
			b.logger.Warn().WithError(err).WithFields(log.Fields{
				"event":      e.String(),
				"subscriber": sub.id,
			}).Log("Handler failed")
		}
	}

	return len(subscriptions)
}

func (b *Bridge) deliver(h Handler, e ActionEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rows := strings.Split(string(debug.Stack()), "\n")
			b.logger.Error().WithField("stack", rows).Log("Recovered from a panic in handler")
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return h(e)
}

// Subscribe registers handler for events addressed to target. Several handlers
// may be subscribed for the same target.
func (b *Bridge) Subscribe(target Target, handler Handler) CancelFunc {
	id := shortuuid.New()

	b.lock.Lock()
	b.subscriber[target] = append(b.subscriber[target], subscription{
		id:      id,
		handler: handler,
	})
	b.lock.Unlock()

	b.logger.Debug().WithFields(log.Fields{
		"target":     target.String(),
		"subscriber": id,
	}).Log("Subscribed")

	once := sync.Once{}

	return func() {
		once.Do(func() {
			b.unsubscribe(target, id)
		})
	}
}

func (b *Bridge) unsubscribe(target Target, id string) {
	b.lock.Lock()
	defer b.lock.Unlock()

	subscriptions := b.subscriber[target]

	for i, s := range subscriptions {
		if s.id != id {
			continue
		}

		// Publish might still iterate over a copy of the old slice.
		n := make([]subscription, 0, len(subscriptions)-1)
		n = append(n, subscriptions[:i]...)
		n = append(n, subscriptions[i+1:]...)

		if len(n) == 0 {
			delete(b.subscriber, target)
		} else {
			b.subscriber[target] = n
		}

		break
	}

	b.logger.Debug().WithFields(log.Fields{
		"target":     target.String(),
		"subscriber": id,
	}).Log("Unsubscribed")
}

// Subscribers returns the number of handlers subscribed for target.
func (b *Bridge) Subscribers(target Target) int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return len(b.subscriber[target])
}

func (b *Bridge) Stats() Stats {
	b.lock.RLock()
	subscribers := 0
	for _, s := range b.subscriber {
		subscribers += len(s)
	}
	b.lock.RUnlock()

	b.statsLock.Lock()
	defer b.statsLock.Unlock()

	stats := Stats{
		Published:   make(map[Kind]uint64, len(b.stats.Published)),
		Delivered:   b.stats.Delivered,
		Dropped:     b.stats.Dropped,
		Failed:      b.stats.Failed,
		Subscribers: subscribers,
	}

	for k, v := range b.stats.Published {
		stats.Published[k] = v
	}

	return stats
}

func (b *Bridge) count(f func(s *Stats)) {
	b.statsLock.Lock()
	defer b.statsLock.Unlock()

	f(&b.stats)
}
