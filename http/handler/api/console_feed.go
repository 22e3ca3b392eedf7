package api

import (
	"github.com/quickshop/bothub/console"
)

type consoleEvent struct {
	name    string
	entries []console.Entry
}

// consoleFeed turns the snapshots of the console into list and append events.
// Only the latest pending snapshot is kept, because every snapshot holds all
// entries.
type consoleFeed struct {
	store     *console.Store
	snapshots chan []console.Entry
	cancel    console.CancelFunc

	ids []string // IDs of the entries the client knows about
}

func newConsoleFeed(store *console.Store) *consoleFeed {
	f := &consoleFeed{
		store:     store,
		snapshots: make(chan []console.Entry, 1),
	}

	// Observers are never called concurrently, so this is the only sender.
	f.cancel = store.Subscribe(func(entries []console.Entry) {
		select {
		case f.snapshots <- entries:
			return
		default:
		}

		select {
		case <-f.snapshots:
		default:
		}

		select {
		case f.snapshots <- entries:
		default:
		}
	})

	return f
}

func (f *consoleFeed) close() {
	f.cancel()
}

// initial returns the list event with the current entries.
func (f *consoleFeed) initial() consoleEvent {
	entries := f.store.Entries()

	f.remember(entries)

	return consoleEvent{name: "list", entries: entries}
}

// next returns the event that brings the client from the entries it knows to
// the given snapshot. It returns false if there's nothing to send.
func (f *consoleFeed) next(entries []console.Entry) (consoleEvent, bool) {
	if len(f.ids) == 0 {
		if len(entries) == 0 {
			return consoleEvent{}, false
		}

		f.remember(entries)

		return consoleEvent{name: "append", entries: entries}, true
	}

	if len(entries) == 0 {
		f.remember(entries)

		return consoleEvent{name: "list", entries: entries}, true
	}

	start := -1
	for i, id := range f.ids {
		if id == entries[0].ID {
			start = i
			break
		}
	}

	if start != -1 {
		known := f.ids[start:]
		current := ids(entries)

		if prefix(known, current) {
			// The snapshot continues what the client has.
			added := entries[len(known):]
			if len(added) == 0 {
				return consoleEvent{}, false
			}

			f.remember(entries)

			return consoleEvent{name: "append", entries: added}, true
		}

		if prefix(current, known) {
			// Older than what the client has already got.
			return consoleEvent{}, false
		}
	}

	f.remember(entries)

	return consoleEvent{name: "list", entries: entries}, true
}

func (f *consoleFeed) remember(entries []console.Entry) {
	f.ids = ids(entries)
}

// prefix returns whether a is a prefix of b.
func prefix(a, b []string) bool {
	if len(a) > len(b) {
		return false
	}

	for i, id := range a {
		if b[i] != id {
			return false
		}
	}

	return true
}

func ids(entries []console.Entry) []string {
	list := make([]string, len(entries))
	for i, e := range entries {
		list[i] = e.ID
	}

	return list
}
