// Package console implements the activity log shown in the dashboard console.
//
// The Store is created once at application start and handed to every panel
// that reports status and to the HTTP API that renders it. It keeps the most
// recent Capacity entries in insertion order.
package console

import (
	"container/ring"
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/lithammer/shortuuid/v4"
)

// Capacity is the number of entries the store retains.
const Capacity = 100

// DefaultTimeFormat is a strftime pattern for the time of day.
const DefaultTimeFormat = "%H:%M:%S"

// Observer receives the complete current sequence after each mutation.
type Observer func(entries []Entry)

// CancelFunc removes a subscription. Calling it more than once has no effect.
type CancelFunc func()

type Config struct {
	// TimeFormat is a strftime pattern used for the entry timestamp label.
	TimeFormat string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Stats are counters since the store has been created.
type Stats struct {
	Appended  map[Severity]uint64
	Evicted   uint64
	Cleared   uint64
	Observers int
}

type Store struct {
	entries *ring.Ring // Next slot to write, which holds the oldest entry once full
	length  int
	lock    sync.RWMutex

	// Mutation and notification happen under notifyLock such that observers see
	// the sequences in the order of the mutations.
	notifyLock sync.Mutex

	observers     map[string]Observer
	observersLock sync.Mutex

	format *strftime.Strftime
	now    func() time.Time

	appended map[Severity]uint64
	evicted  uint64
	cleared  uint64
}

// New returns an empty store.
func New(config Config) (*Store, error) {
	if len(config.TimeFormat) == 0 {
		config.TimeFormat = DefaultTimeFormat
	}

	format, err := strftime.New(config.TimeFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid time format %q: %w", config.TimeFormat, err)
	}

	s := &Store{
		entries:   ring.New(Capacity),
		format:    format,
		now:       config.Now,
		observers: map[string]Observer{},
		appended:  map[Severity]uint64{},
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// Append adds a new entry with the given message. An unrecognized severity is
// stored as SeverityInfo. If the store is full, the oldest entry is discarded.
func (s *Store) Append(message string, severity Severity) {
	s.AppendEntry(message, severity)
}

// AppendEntry is Append and returns the entry that has been added.
func (s *Store) AppendEntry(message string, severity Severity) Entry {
	if !severity.IsValid() {
		severity = SeverityInfo
	}

	now := s.now()

	e := Entry{
		ID:        shortuuid.New(),
		Message:   message,
		Severity:  severity,
		Timestamp: s.format.FormatString(now),
		Time:      now,
	}

	s.notifyLock.Lock()
	defer s.notifyLock.Unlock()

	s.lock.Lock()
	if s.length == Capacity {
		s.evicted++
	} else {
		s.length++
	}
	s.entries.Value = e
	s.entries = s.entries.Next()
	s.appended[severity]++
	snapshot := s.snapshot()
	s.lock.Unlock()

	s.notify(snapshot)

	return e
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.notifyLock.Lock()
	defer s.notifyLock.Unlock()

	s.lock.Lock()
	s.entries = ring.New(Capacity)
	s.length = 0
	s.cleared++
	s.lock.Unlock()

	s.notify([]Entry{})
}

// Entries returns a copy of the current entries, oldest first.
func (s *Store) Entries() []Entry {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.snapshot()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.length
}

// Subscribe registers an observer. It is called synchronously after every
// Append or Clear with the resulting entries. The observer must not call
// Append or Clear itself.
func (s *Store) Subscribe(o Observer) CancelFunc {
	var id string

	s.observersLock.Lock()
	for {
		id = shortuuid.New()
		if _, ok := s.observers[id]; !ok {
			s.observers[id] = o
			break
		}
	}
	s.observersLock.Unlock()

	once := sync.Once{}

	return func() {
		once.Do(func() {
			s.observersLock.Lock()
			delete(s.observers, id)
			s.observersLock.Unlock()
		})
	}
}

func (s *Store) Stats() Stats {
	s.lock.RLock()
	stats := Stats{
		Appended: make(map[Severity]uint64, len(s.appended)),
		Evicted:  s.evicted,
		Cleared:  s.cleared,
	}

	for k, v := range s.appended {
		stats.Appended[k] = v
	}
	s.lock.RUnlock()

	s.observersLock.Lock()
	stats.Observers = len(s.observers)
	s.observersLock.Unlock()

	return stats
}

// snapshot requires at least the read lock.
func (s *Store) snapshot() []Entry {
	entries := make([]Entry, 0, s.length)

	s.entries.Do(func(v interface{}) {
		if v == nil {
			return
		}

		entries = append(entries, v.(Entry))
	})

	return entries
}

func (s *Store) notify(entries []Entry) {
	s.observersLock.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.observersLock.Unlock()

	for _, o := range observers {
		// Every observer gets its own copy.
		c := make([]Entry, len(entries))
		copy(c, entries)

		call(o, c)
	}
}

func call(o Observer, entries []Entry) {
	defer func() {
		recover()
	}()

	o(entries)
}
