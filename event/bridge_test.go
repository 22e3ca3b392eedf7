package event

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/quickshop/bothub/log"

	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("test-connection")
	require.NoError(t, err)
	require.Equal(t, KindTestConnection, k)

	k, err = ParseKind(" Fetch-Data ")
	require.NoError(t, err)
	require.Equal(t, KindFetchData, k)

	_, err = ParseKind("reboot")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestPublishTarget(t *testing.T) {
	b := NewBridge(Config{})

	a, other := 0, 0

	b.Subscribe("A", func(e ActionEvent) error {
		require.Equal(t, KindTestConnection, e.Kind)
		require.Equal(t, Target("A"), e.Target)
		a++
		return nil
	})

	b.Subscribe("B", func(e ActionEvent) error {
		other++
		return nil
	})

	n := b.Publish(NewActionEvent(KindTestConnection, "A"))

	require.Equal(t, 1, n)
	require.Equal(t, 1, a)
	require.Equal(t, 0, other)
}

func TestPublishWithoutSubscriber(t *testing.T) {
	b := NewBridge(Config{})

	require.Equal(t, 0, b.Publish(NewActionEvent(KindFetchData, "gloria")))

	stats := b.Stats()
	require.Equal(t, uint64(1), stats.Dropped)
	require.Equal(t, uint64(1), stats.Published[KindFetchData])
}

func TestPublishUnknownKind(t *testing.T) {
	b := NewBridge(Config{})

	called := false
	b.Subscribe("gloria", func(e ActionEvent) error {
		called = true
		return nil
	})

	require.Equal(t, 0, b.Publish(NewActionEvent("reboot", "gloria")))
	require.False(t, called)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBridge(Config{})

	called := 0
	cancel := b.Subscribe("A", func(e ActionEvent) error {
		called++
		return nil
	})

	require.Equal(t, 1, b.Subscribers("A"))

	cancel()
	cancel()

	require.Equal(t, 0, b.Subscribers("A"))

	n := b.Publish(NewActionEvent(KindTestConnection, "A"))
	require.Equal(t, 0, n)
	require.Equal(t, 0, called)
}

func TestUnsubscribeKeepsOthers(t *testing.T) {
	b := NewBridge(Config{})

	calls := []string{}

	b.Subscribe("A", func(e ActionEvent) error {
		calls = append(calls, "first")
		return nil
	})

	cancel := b.Subscribe("A", func(e ActionEvent) error {
		calls = append(calls, "second")
		return nil
	})

	b.Subscribe("A", func(e ActionEvent) error {
		calls = append(calls, "third")
		return nil
	})

	cancel()

	b.Publish(NewActionEvent(KindShowSnippet, "A"))

	require.Equal(t, []string{"first", "third"}, calls)
}

func TestHandlerIsolation(t *testing.T) {
	buffer := bytes.Buffer{}
	logger := log.New("Bridge").WithOutput(log.NewConsoleWriter(&buffer, log.Lwarn, false))

	b := NewBridge(Config{Logger: logger})

	calls := []string{}

	b.Subscribe("A", func(e ActionEvent) error {
		calls = append(calls, "panic")
		panic("misbehaving panel")
	})

	b.Subscribe("A", func(e ActionEvent) error {
		calls = append(calls, "error")
		return errors.New("failed")
	})

	b.Subscribe("A", func(e ActionEvent) error {
		calls = append(calls, "ok")
		return nil
	})

	var n int
	require.NotPanics(t, func() {
		n = b.Publish(NewActionEvent(KindTestConnection, "A"))
	})

	require.Equal(t, 3, n)
	require.Equal(t, []string{"panic", "error", "ok"}, calls)

	stats := b.Stats()
	require.Equal(t, uint64(3), stats.Delivered)
	require.Equal(t, uint64(2), stats.Failed)
	require.Equal(t, 3, stats.Subscribers)

	require.Contains(t, buffer.String(), "misbehaving panel")
	require.Contains(t, buffer.String(), `error="failed"`)
}

func TestSubscribeFromHandler(t *testing.T) {
	b := NewBridge(Config{})

	var cancel CancelFunc
	called := 0

	cancel = b.Subscribe("A", func(e ActionEvent) error {
		called++
		cancel()
		b.Subscribe("B", func(e ActionEvent) error { return nil })
		return nil
	})

	require.Equal(t, 1, b.Publish(NewActionEvent(KindTestConnection, "A")))
	require.Equal(t, 0, b.Publish(NewActionEvent(KindTestConnection, "A")))
	require.Equal(t, 1, called)
	require.Equal(t, 1, b.Subscribers("B"))
}

func TestConcurrentPublish(t *testing.T) {
	b := NewBridge(Config{})

	lock := sync.Mutex{}
	called := 0

	b.Subscribe("A", func(e ActionEvent) error {
		lock.Lock()
		called++
		lock.Unlock()
		return nil
	})

	wg := sync.WaitGroup{}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < 10; j++ {
				b.Publish(NewActionEvent(KindFetchData, "A"))
				cancel := b.Subscribe("B", func(e ActionEvent) error { return nil })
				cancel()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 100, called)
	require.Equal(t, 0, b.Subscribers("B"))
}
