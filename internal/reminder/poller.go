// Package reminder runs the periodic due-reminder check of a workspace.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	reminderpage "github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/reminder"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// DefaultInterval is the time between two checks.
const DefaultInterval = 60 * time.Second

// Source yields the current reminder collection, usually the reminders page
// controller.
type Source interface {
	Records() []resource.Record
}

// Notify receives the reminders that became due since the previous check.
type Notify func(ctx context.Context, due []resource.Record)

// Poller checks a reminder collection on a fixed interval. It has no backoff
// and stops when its context is cancelled or Stop is called, whichever
// comes first.
type Poller struct {
	src      Source
	interval time.Duration
	notify   Notify
	logger   zerolog.Logger
	nowFunc  func() time.Time

	mu       sync.Mutex
	notified map[int64]string

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewPoller creates a poller. A non-positive interval uses DefaultInterval.
func NewPoller(src Source, interval time.Duration, notify Notify, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		src:      src,
		interval: interval,
		notify:   notify,
		logger:   logger.With().Str("component", "reminder-poller").Logger(),
		nowFunc:  time.Now,
		notified: make(map[int64]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the polling goroutine. It runs one check immediately.
// Calling Start twice has no effect.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ticker.C:
			p.Check(ctx)
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		}
	}
}

// Check runs one due-reminder pass and returns the reminders that became
// due since the last pass. A reminder is reported again only after its date
// or time changes.
func (p *Poller) Check(ctx context.Context) []resource.Record {
	now := p.nowFunc()
	due := reminderpage.Due(p.src.Records(), now)

	p.mu.Lock()
	var fresh []resource.Record
	current := make(map[int64]string, len(due))
	for _, r := range due {
		key := r.String("date") + " " + r.String("time")
		current[r.ID] = key
		if p.notified[r.ID] != key {
			fresh = append(fresh, r)
		}
	}
	p.notified = current
	p.mu.Unlock()

	p.logger.Debug().Int("due", len(due)).Int("new", len(fresh)).Msg("reminder check")
	if len(fresh) > 0 && p.notify != nil {
		p.notify(ctx, fresh)
	}
	return fresh
}

// Stop ends the polling goroutine and waits for it to exit. It is safe to
// call more than once, and before Start.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.done
	}
}
