package console

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quickshop/bothub/log"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	s, err := New(Config{
		Now: func() time.Time {
			return time.Date(2024, time.March, 4, 13, 37, 42, 0, time.UTC)
		},
	})
	require.NoError(t, err)

	return s
}

func messages(entries []Entry) []string {
	m := make([]string, len(entries))
	for i, e := range entries {
		m[i] = e.Message
	}

	return m
}

func TestAppend(t *testing.T) {
	s := newTestStore(t)

	s.Append("Testing Gloria connection...", SeverityInfo)
	s.Append("", SeveritySuccess)

	entries := s.Entries()
	require.Equal(t, 2, len(entries))
	require.Equal(t, 2, s.Len())

	require.Equal(t, "Testing Gloria connection...", entries[0].Message)
	require.Equal(t, SeverityInfo, entries[0].Severity)
	require.Equal(t, "13:37:42", entries[0].Timestamp)
	require.NotEmpty(t, entries[0].ID)

	require.Equal(t, "", entries[1].Message)
	require.Equal(t, SeveritySuccess, entries[1].Severity)
	require.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestAppendInvalidSeverity(t *testing.T) {
	s := newTestStore(t)

	s.Append("hello", Severity("fatal"))
	s.Append("world", Severity(""))

	for _, e := range s.Entries() {
		require.Equal(t, SeverityInfo, e.Severity)
	}
}

func TestParseSeverity(t *testing.T) {
	require.Equal(t, SeverityWarning, ParseSeverity(" Warning "))
	require.Equal(t, SeverityError, ParseSeverity("error"))
	require.Equal(t, SeverityInfo, ParseSeverity("critical"))
	require.Equal(t, SeverityInfo, ParseSeverity(""))
}

func TestTimeFormat(t *testing.T) {
	s, err := New(Config{
		TimeFormat: "%Y-%m-%d %H:%M",
		Now: func() time.Time {
			return time.Date(2024, time.March, 4, 13, 37, 42, 0, time.UTC)
		},
	})
	require.NoError(t, err)

	s.Append("hello", SeverityInfo)
	require.Equal(t, "2024-03-04 13:37", s.Entries()[0].Timestamp)

	_, err = New(Config{TimeFormat: "%H:%Q"})
	require.Error(t, err)
}

func TestEviction(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 105; i++ {
		s.Append(fmt.Sprintf("msg-%d", i), SeverityInfo)
	}

	entries := s.Entries()
	require.Equal(t, Capacity, len(entries))
	require.Equal(t, "msg-6", entries[0].Message)
	require.Equal(t, "msg-105", entries[99].Message)

	for i, e := range entries {
		require.Equal(t, fmt.Sprintf("msg-%d", i+6), e.Message)
	}

	require.Equal(t, uint64(5), s.Stats().Evicted)
}

func TestExactlyCapacity(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= Capacity; i++ {
		s.Append(fmt.Sprintf("msg-%d", i), SeverityInfo)
	}

	entries := s.Entries()
	require.Equal(t, Capacity, len(entries))
	require.Equal(t, "msg-1", entries[0].Message)
	require.Equal(t, uint64(0), s.Stats().Evicted)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	s.Clear()
	require.Equal(t, 0, s.Len())

	s.Append("a", SeverityInfo)
	s.Append("b", SeverityError)
	s.Append("c", SeveritySuccess)

	s.Clear()
	require.Equal(t, 0, s.Len())
	require.Equal(t, []Entry{}, s.Entries())

	s.Clear()
	require.Equal(t, 0, s.Len())
	require.Equal(t, uint64(3), s.Stats().Cleared)
}

func TestClearThenAppend(t *testing.T) {
	s := newTestStore(t)

	s.Append("one", SeverityInfo)
	s.Append("two", SeverityError)
	s.Append("three", SeveritySuccess)
	s.Clear()
	s.Append("four", SeverityWarning)

	entries := s.Entries()
	require.Equal(t, 1, len(entries))
	require.Equal(t, SeverityWarning, entries[0].Severity)
	require.Equal(t, "four", entries[0].Message)
}

func TestClearAfterWrap(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 150; i++ {
		s.Append(fmt.Sprintf("msg-%d", i), SeverityInfo)
	}

	s.Clear()

	for i := 1; i <= 3; i++ {
		s.Append(fmt.Sprintf("new-%d", i), SeverityInfo)
	}

	require.Equal(t, []string{"new-1", "new-2", "new-3"}, messages(s.Entries()))
}

func TestEntriesAreCopies(t *testing.T) {
	s := newTestStore(t)

	s.Append("original", SeverityInfo)

	entries := s.Entries()
	entries[0].Message = "changed"

	require.Equal(t, "original", s.Entries()[0].Message)
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)

	s.Append("before", SeverityInfo)

	calls := [][]string{}
	cancel := s.Subscribe(func(entries []Entry) {
		calls = append(calls, messages(entries))
	})

	s.Append("a", SeverityInfo)
	s.Append("b", SeverityWarning)
	s.Clear()
	s.Append("c", SeverityError)

	require.Equal(t, [][]string{
		{"before", "a"},
		{"before", "a", "b"},
		{},
		{"c"},
	}, calls)

	cancel()
	cancel()

	s.Append("d", SeverityInfo)
	require.Equal(t, 4, len(calls))
	require.Equal(t, 0, s.Stats().Observers)
}

func TestSubscribeConsistentWithStore(t *testing.T) {
	s := newTestStore(t)

	mismatch := false
	s.Subscribe(func(entries []Entry) {
		current := s.Entries()
		if len(current) != len(entries) {
			mismatch = true
			return
		}

		for i := range current {
			if current[i].ID != entries[i].ID {
				mismatch = true
			}
		}
	})

	for i := 0; i < 120; i++ {
		s.Append(fmt.Sprintf("msg-%d", i), SeverityInfo)
		if i == 60 {
			s.Clear()
		}
	}

	require.False(t, mismatch)
}

func TestSubscribePanic(t *testing.T) {
	s := newTestStore(t)

	s.Subscribe(func(entries []Entry) {
		panic("observer failed")
	})

	called := 0
	s.Subscribe(func(entries []Entry) {
		called++
	})

	require.NotPanics(t, func() {
		s.Append("hello", SeverityInfo)
	})

	require.Equal(t, 1, called)
	require.Equal(t, 1, s.Len())
}

func TestObserverCopies(t *testing.T) {
	s := newTestStore(t)

	s.Subscribe(func(entries []Entry) {
		for i := range entries {
			entries[i].Message = "tampered"
		}
	})

	var seen []string
	s.Subscribe(func(entries []Entry) {
		seen = messages(entries)
	})

	s.Append("hello", SeverityInfo)

	require.Equal(t, []string{"hello"}, messages(s.Entries()))
	require.Equal(t, []string{"hello"}, seen)
}

func TestConcurrentAppend(t *testing.T) {
	s := newTestStore(t)

	last := 0
	ordered := true
	s.Subscribe(func(entries []Entry) {
		// Sequences grow until the capacity has been reached.
		if len(entries) < last && len(entries) != Capacity {
			ordered = false
		}
		last = len(entries)
	})

	wg := sync.WaitGroup{}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			for j := 0; j < 50; j++ {
				s.Append(fmt.Sprintf("%d-%d", i, j), SeverityInfo)
			}
		}(i)
	}

	wg.Wait()

	require.True(t, ordered)
	require.Equal(t, Capacity, s.Len())
	require.Equal(t, uint64(500), s.Stats().Appended[SeverityInfo])
}

func TestLogWriter(t *testing.T) {
	s := newTestStore(t)

	logger := log.New("Gloria").WithOutput(NewLogWriter(s, log.Lwarn))

	logger.Info().Log("ignored")
	logger.Warn().WithField("status", 401).Log("Unauthorized")
	logger.Error().Log("Connection refused")

	entries := s.Entries()
	require.Equal(t, 2, len(entries))
	require.Equal(t, SeverityWarning, entries[0].Severity)
	require.Equal(t, "[Gloria] Unauthorized status=401", entries[0].Message)
	require.Equal(t, SeverityError, entries[1].Severity)
	require.Equal(t, "[Gloria] Connection refused", entries[1].Message)
}
