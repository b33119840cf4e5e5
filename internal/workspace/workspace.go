// Package workspace holds the resource pages of each user session.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain"
	reminderpage "github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/reminder"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/events"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/reminder"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

const remindersPage = "reminders"

// Workspace is the set of page controllers of one session plus its
// reminder poller.
type Workspace struct {
	id     string
	pages  map[string]*resource.Controller
	poller *reminder.Poller
	// pollCtx bounds the poller goroutine; cancel ends it.
	pollCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	lastUsed time.Time
	closed   bool
}

// ID returns the session id.
func (w *Workspace) ID() string { return w.id }

// Page returns the controller of the named page.
func (w *Workspace) Page(name string) (*resource.Controller, error) {
	c, ok := w.pages[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, resource.ErrUnknownResource)
	}
	return c, nil
}

// Names returns the page names in alphabetical order.
func (w *Workspace) Names() []string {
	names := make([]string, 0, len(w.pages))
	for n := range w.pages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DueReminders returns the pending reminders whose date and time have
// passed at now.
func (w *Workspace) DueReminders(now time.Time) []resource.Record {
	c, ok := w.pages[remindersPage]
	if !ok {
		return nil
	}
	return reminderpage.Due(c.Records(), now)
}

// CheckReminders runs one poller pass and returns the newly due reminders.
func (w *Workspace) CheckReminders(ctx context.Context) []resource.Record {
	if w.poller == nil {
		return nil
	}
	return w.poller.Check(ctx)
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// Close stops the reminder poller. It is safe to call more than once.
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	if w.poller != nil {
		w.poller.Stop()
	}
	if w.cancel != nil {
		w.cancel()
	}
}

// Options configures a Manager.
type Options struct {
	Stores           StoreFactory
	Events           events.Publisher
	ReminderInterval time.Duration
	// IdleTTL evicts workspaces unused for that long. Zero disables eviction.
	IdleTTL time.Duration
	Logger  zerolog.Logger
	// DisablePoller skips the background goroutine; CheckReminders still
	// runs a pass on demand.
	DisablePoller bool
}

// Manager creates workspaces on first use and disposes of idle ones.
type Manager struct {
	opts    Options
	logger  zerolog.Logger
	nowFunc func() time.Time

	mu       sync.Mutex
	sessions map[string]*Workspace

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager. Missing stores default to mock mode and
// missing events to events.Nop.
func NewManager(opts Options) *Manager {
	if opts.Stores == nil {
		opts.Stores = MemoryStores()
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	return &Manager{
		opts:     opts,
		logger:   opts.Logger.With().Str("component", "workspaces").Logger(),
		nowFunc:  time.Now,
		sessions: make(map[string]*Workspace),
		stop:     make(chan struct{}),
	}
}

// Get returns the workspace of session, building and loading it on first
// use. ctx is used for the initial loads only, so it may carry the
// credential forwarded to remote stores.
func (m *Manager) Get(ctx context.Context, session string) (*Workspace, error) {
	if session == "" {
		return nil, errors.New("empty session id")
	}

	// Touch under m.mu so evictIdle, which also holds it, never closes a
	// workspace between lookup and return.
	m.mu.Lock()
	if w, ok := m.sessions[session]; ok {
		w.touch(m.nowFunc())
		m.mu.Unlock()
		return w, nil
	}
	m.mu.Unlock()

	w, err := m.build(ctx, session)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[session]; ok {
		existing.touch(m.nowFunc())
		m.mu.Unlock()
		w.Close()
		return existing, nil
	}
	m.sessions[session] = w
	n := len(m.sessions)
	m.mu.Unlock()

	if !m.opts.DisablePoller {
		w.poller.Start(w.pollCtx)
	}
	m.logger.Info().Str("session_id", session).Int("workspaces", n).Msg("workspace created")
	return w, nil
}

func (m *Manager) build(ctx context.Context, session string) (*Workspace, error) {
	logger := m.logger.With().Str("session_id", session).Logger()
	observe := events.Observer(m.opts.Events, session, logger)

	w := &Workspace{
		id:       session,
		pages:    make(map[string]*resource.Controller),
		lastUsed: m.nowFunc(),
	}
	w.pollCtx, w.cancel = context.WithCancel(context.Background())
	for name, page := range domain.Pages() {
		st, err := m.opts.Stores(ctx, page)
		if err != nil {
			w.cancel()
			return nil, fmt.Errorf("store for %s: %w", name, err)
		}
		c := resource.NewController(page.Schema, st,
			resource.WithObserver(observe),
			resource.WithLogger(logger),
		)
		// A failed load leaves the page empty with its error set; the
		// client can retry with an explicit load.
		if err := c.Load(ctx); err != nil {
			logger.Warn().Err(err).Str("resource", name).Msg("initial load failed")
		}
		w.pages[name] = c
	}

	w.poller = reminder.NewPoller(w.pages[remindersPage], m.opts.ReminderInterval,
		m.dueNotifier(session, logger), logger)
	return w, nil
}

func (m *Manager) dueNotifier(session string, logger zerolog.Logger) reminder.Notify {
	return func(ctx context.Context, due []resource.Record) {
		now := m.nowFunc()
		for _, r := range due {
			logger.Info().
				Int64("reminder_id", r.ID).
				Str("title", r.String("title")).
				Msg("reminder due")
			if err := m.opts.Events.Publish(ctx, events.DueEvent(session, r, now)); err != nil {
				logger.Warn().Err(err).Int64("reminder_id", r.ID).Msg("due event not delivered")
			}
		}
	}
}

// Dispose closes and forgets the workspace of session. It reports whether
// one existed.
func (m *Manager) Dispose(session string) bool {
	m.mu.Lock()
	w, ok := m.sessions[session]
	delete(m.sessions, session)
	m.mu.Unlock()

	if ok {
		w.Close()
		m.logger.Info().Str("session_id", session).Msg("workspace disposed")
	}
	return ok
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartCleanup evicts idle workspaces in the background until Close.
func (m *Manager) StartCleanup() {
	if m.opts.IdleTTL <= 0 {
		return
	}
	go m.cleanupLoop()
}

func (m *Manager) cleanupLoop() {
	every := m.opts.IdleTTL / 2
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stop:
			return
		}
	}
}

// evictIdle disposes of every workspace unused for IdleTTL or longer.
func (m *Manager) evictIdle() int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.nowFunc().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var idle []*Workspace
	for id, w := range m.sessions {
		if !w.idleSince().After(cutoff) {
			idle = append(idle, w)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, w := range idle {
		w.Close()
		m.logger.Info().Str("session_id", w.id).Msg("idle workspace evicted")
	}
	return len(idle)
}

// Close stops the cleanup loop and disposes of every workspace.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Workspace)
	m.mu.Unlock()

	for _, w := range all {
		w.Close()
	}
}
