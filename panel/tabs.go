package panel

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/log"
)

var ErrClosed = errors.New("tabs are closed")

type TabsConfig struct {
	Bridge  *event.Bridge
	Console Reporter
	Form    *Form

	// Timeout for a single action. Defaults to 10 seconds.
	Timeout time.Duration

	Logger log.Logger
}

// TabsStats are counters since the tabs have been created.
type TabsStats struct {
	Active      string
	Activations uint64
	Actions     uint64
	Failed      uint64
	InFlight    int64
}

// Tabs holds the panels in display order. At most one of them is active at
// any time and only the active one reacts to actions.
type Tabs struct {
	panels []Panel
	byID   map[event.Target]Panel

	bridge  *event.Bridge
	console Reporter
	form    *Form
	timeout time.Duration
	logger  log.Logger

	active      event.Target
	unsubscribe event.CancelFunc
	closed      bool
	lock        sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats     TabsStats
	statsLock sync.Mutex
}

// NewTabs returns tabs for the given panels. None of them is active.
func NewTabs(config TabsConfig, panels ...Panel) (*Tabs, error) {
	if config.Bridge == nil {
		return nil, fmt.Errorf("no event bridge provided")
	}

	if config.Console == nil {
		return nil, fmt.Errorf("no console provided")
	}

	if config.Form == nil {
		return nil, fmt.Errorf("no form provided")
	}

	t := &Tabs{
		byID:    map[event.Target]Panel{},
		bridge:  config.Bridge,
		console: config.Console,
		form:    config.Form,
		timeout: config.Timeout,
		logger:  config.Logger,
	}

	if t.timeout <= 0 {
		t.timeout = 10 * time.Second
	}

	if t.logger == nil {
		t.logger = log.New("")
	}

	for _, p := range panels {
		id := p.Definition().ID
		if len(id) == 0 {
			return nil, fmt.Errorf("panel without id")
		}

		if _, ok := t.byID[id]; ok {
			return nil, fmt.Errorf("duplicate panel id %q", id)
		}

		t.byID[id] = p
		t.panels = append(t.panels, p)
	}

	t.ctx, t.cancel = context.WithCancel(context.Background())

	return t, nil
}

// Panels returns all panels in display order.
func (t *Tabs) Panels() []Panel {
	panels := make([]Panel, len(t.panels))
	copy(panels, t.panels)

	return panels
}

func (t *Tabs) Get(id event.Target) (Panel, error) {
	p, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, id)
	}

	return p, nil
}

// Activate makes the panel id the active one. The currently active panel is
// unsubscribed first. Activating the active panel again is a no-op.
func (t *Tabs) Activate(id event.Target) error {
	p, err := t.Get(id)
	if err != nil {
		return err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return ErrClosed
	}

	if t.active == id && t.unsubscribe != nil {
		return nil
	}

	if t.unsubscribe != nil {
		t.unsubscribe()
		t.logger.Debug().WithField("panel", t.active.String()).Log("Deactivated")
	}

	t.active = id
	t.unsubscribe = t.bridge.Subscribe(id, t.handler(p))

	t.count(func(s *TabsStats) { s.Activations++ })

	t.logger.Info().WithField("panel", id.String()).Log("Activated")

	return nil
}

// Active returns the id of the active panel or an empty target.
func (t *Tabs) Active() event.Target {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.active
}

// Close deactivates the active panel and cancels the context of running
// actions. Afterwards no panel can be activated.
func (t *Tabs) Close() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return
	}

	t.closed = true

	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}

	t.active = ""
	t.cancel()
}

// Wait blocks until all running actions have returned.
func (t *Tabs) Wait() {
	t.wg.Wait()
}

func (t *Tabs) Stats() TabsStats {
	active := t.Active()

	t.statsLock.Lock()
	defer t.statsLock.Unlock()

	stats := t.stats
	stats.Active = active.String()

	return stats
}

// handler returns the bridge handler for p. It starts the action on its own
// goroutine and returns immediately.
func (t *Tabs) handler(p Panel) event.Handler {
	def := p.Definition()

	return func(e event.ActionEvent) error {
		// Publish may still hold the subscription of a panel that has
		// been deactivated in the meantime.
		if t.Active() != def.ID {
			return nil
		}

		values, err := t.form.Values(def)
		if err != nil {
			return fmt.Errorf("%s: %w", def.ID, err)
		}

		t.wg.Add(1)
		t.count(func(s *TabsStats) {
			s.Actions++
			s.InFlight++
		})

		go func() {
			defer t.wg.Done()

			err := t.run(p, Action{Kind: e.Kind, Values: values})

			t.count(func(s *TabsStats) {
				s.InFlight--
				if err != nil {
					s.Failed++
				}
			})

			t.report(def, e.Kind, err)
		}()

		return nil
	}
}

func (t *Tabs) run(p Panel, a Action) (err error) {
	ctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			rows := strings.Split(string(debug.Stack()), "\n")
			t.logger.Error().WithField("stack", rows).Log("Recovered from a panic in panel")
			err = fmt.Errorf("panicked: %v", r)
		}
	}()

	return p.Handle(ctx, a)
}

func (t *Tabs) report(def Definition, kind event.Kind, err error) {
	if err == nil {
		return
	}

	logger := t.logger.WithFields(log.Fields{
		"panel":  def.ID.String(),
		"action": kind.String(),
	})

	if errors.Is(err, ErrUnsupported) {
		logger.Debug().Log("Unsupported action")
		t.console.Append(fmt.Sprintf("%s does not support %s", def.Title, kind), console.SeverityWarning)
		return
	}

	logger.Debug().WithError(err).Log("Action failed")
	t.console.Append(fmt.Sprintf("%s %s failed: %s", def.Title, kind, err), console.SeverityError)
}

func (t *Tabs) count(f func(s *TabsStats)) {
	t.statsLock.Lock()
	defer t.statsLock.Unlock()

	f(&t.stats)
}
