package resource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Draft holds the in-progress form values of a page, keyed by field name.
type Draft map[string]string

// Clone copies the draft.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfirmer sets the callback consulted before deletes.
func WithConfirmer(fn Confirmer) Option {
	return func(c *Controller) { c.confirm = fn }
}

// WithObserver sets the callback notified after acknowledged changes.
func WithObserver(fn Observer) Option {
	return func(c *Controller) { c.observe = fn }
}

// WithLogger sets the controller logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock overrides time.Now, used for change timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the record collection and the single create-or-edit form
// of one resource page.
type Controller struct {
	schema  *Schema
	store   Store
	confirm Confirmer
	observe Observer
	logger  zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	records []Record
	state   State
	draft   Draft
	target  int64
	pending bool
	lastErr error
}

// NewController returns a controller in the Browsing state with an empty
// collection; call Load to fetch the records from the store.
func NewController(schema *Schema, store Store, opts ...Option) *Controller {
	c := &Controller{
		schema:  schema,
		store:   store,
		confirm: ContextConfirmer,
		logger:  zerolog.Nop(),
		now:     time.Now,
		state:   Browsing,
		draft:   schema.DefaultDraft(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("resource", schema.Name).Logger()
	return c
}

// Schema returns the resource schema.
func (c *Controller) Schema() *Schema { return c.schema }

// Load replaces the local collection with the store contents.
func (c *Controller) Load(ctx context.Context) error {
	recs, err := c.store.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return c.storeFailure("list", err)
	}
	c.records = cloneAll(recs)
	c.lastErr = nil
	return nil
}

// New opens an empty form for a new record.
func (c *Controller) New() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return ErrRequestPending
	}
	if err := checkTransition(c.state, Creating); err != nil {
		return err
	}
	c.state = Creating
	c.target = 0
	c.draft = c.schema.DefaultDraft()
	return nil
}

// Edit opens the form on an existing record, copying its current values.
func (c *Controller) Edit(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return ErrRequestPending
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%s %d: %w", c.schema.Singular, id, ErrNotFound)
	}
	if err := checkTransition(c.state, Editing); err != nil {
		return err
	}
	c.state = Editing
	c.target = id
	c.draft = c.schema.DraftFrom(c.records[idx])
	return nil
}

// SetField changes exactly one draft value.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return ErrRequestPending
	}
	if !c.state.FormOpen() {
		return &TransitionError{From: c.state, To: c.state, Allowed: allowedFrom(c.state)}
	}
	if _, ok := c.schema.Field(name); !ok {
		return &ValidationError{Fields: []string{name}, Message: fmt.Sprintf("unknown field %q", name)}
	}
	c.draft[name] = value
	return nil
}

// Cancel closes the form without saving.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return ErrRequestPending
	}
	if err := checkTransition(c.state, Browsing); err != nil {
		return err
	}
	c.resetForm()
	return nil
}

// Submit validates the draft and saves it: as a new record in Creating, or
// over the EditingTarget in Editing. On any failure the collection and the
// form are left untouched so the user can fix the input or retry.
func (c *Controller) Submit(ctx context.Context) (Record, error) {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Record{}, ErrRequestPending
	}
	if err := checkTransition(c.state, Browsing); err != nil {
		c.mu.Unlock()
		return Record{}, err
	}
	fields, err := c.schema.Validate(c.draft)
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return Record{}, err
	}
	editing := c.state == Editing
	target := c.target
	c.pending = true
	c.mu.Unlock()

	var saved Record
	if editing {
		saved, err = c.store.Update(ctx, NewRecord(target, fields))
	} else {
		saved, err = c.store.Create(ctx, NewRecord(0, fields))
	}

	c.mu.Lock()
	c.pending = false
	if err != nil {
		op := "create"
		if editing {
			op = "update"
		}
		serr := c.storeFailure(op, err)
		c.mu.Unlock()
		return Record{}, serr
	}

	change := Change{Resource: c.schema.Name, Action: Created, At: c.now()}
	if editing {
		saved.ID = target
		c.put(saved)
		change.Action = Updated
	} else {
		c.records = append(c.records, saved.Clone())
	}
	c.resetForm()
	c.lastErr = nil
	c.mu.Unlock()

	c.notify(ctx, change, saved)
	return saved.Clone(), nil
}

// Delete removes a record after the confirmer approves it. A declined
// confirmation returns (false, nil) and changes nothing. The record is
// removed locally only once the store acknowledges the deletion.
func (c *Controller) Delete(ctx context.Context, id int64) (bool, error) {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return false, ErrRequestPending
	}
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return false, fmt.Errorf("%s %d: %w", c.schema.Singular, id, ErrNotFound)
	}
	rec := c.records[idx].Clone()
	c.mu.Unlock()

	if !c.confirm(ctx, rec) {
		c.logger.Debug().Int64("id", id).Msg("delete declined")
		return false, nil
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return false, ErrRequestPending
	}
	c.pending = true
	c.mu.Unlock()

	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	c.pending = false
	if err != nil {
		serr := c.storeFailure("delete", err)
		c.mu.Unlock()
		return false, serr
	}
	if i := c.indexOf(id); i >= 0 {
		c.records = append(c.records[:i:i], c.records[i+1:]...)
	}
	if c.state == Editing && c.target == id {
		c.resetForm()
	}
	c.lastErr = nil
	c.mu.Unlock()

	c.notify(ctx, Change{Resource: c.schema.Name, Action: Deleted, At: c.now()}, rec)
	return true, nil
}

// Patch updates a subset of a record's fields, e.g. a status or a result.
func (c *Controller) Patch(ctx context.Context, id int64, values map[string]string) (Record, error) {
	fields, err := c.schema.ParsePartial(values)
	if err != nil {
		return Record{}, err
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Record{}, ErrRequestPending
	}
	if c.indexOf(id) < 0 {
		c.mu.Unlock()
		return Record{}, fmt.Errorf("%s %d: %w", c.schema.Singular, id, ErrNotFound)
	}
	c.pending = true
	c.mu.Unlock()

	saved, err := c.store.Patch(ctx, id, fields)

	c.mu.Lock()
	c.pending = false
	if err != nil {
		serr := c.storeFailure("patch", err)
		c.mu.Unlock()
		return Record{}, serr
	}
	// The store may answer with only the patched fields; merge them over
	// the local copy.
	if i := c.indexOf(id); i >= 0 {
		merged := c.records[i].Clone()
		for k, v := range saved.Fields {
			merged.Fields[k] = v
		}
		saved = merged
	}
	saved.ID = id
	c.put(saved)
	c.lastErr = nil
	c.mu.Unlock()

	c.notify(ctx, Change{Resource: c.schema.Name, Action: Patched, At: c.now()}, saved)
	return saved.Clone(), nil
}

// Search returns the records whose searchable fields contain term.
func (c *Controller) Search(term string) []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.records, c.schema.Searchable(), term)
}

// Records returns a copy of the whole collection in order.
func (c *Controller) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.records)
}

// State returns the current form state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the form values.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Target returns the EditingTarget, if any.
func (c *Controller) Target() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.state == Editing
}

// Err returns the last page-level error, cleared by the next success.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) storeFailure(op string, err error) error {
	serr := &StoreError{Op: op, Resource: c.schema.Name, Cause: err}
	c.lastErr = serr
	c.logger.Warn().Err(err).Str("op", op).Msg("store request failed")
	return serr
}

func (c *Controller) resetForm() {
	c.state = Browsing
	c.target = 0
	c.draft = c.schema.DefaultDraft()
}

// put replaces the record with the same id, or appends it when the
// collection no longer holds it.
func (c *Controller) put(r Record) {
	if i := c.indexOf(r.ID); i >= 0 {
		c.records[i] = r.Clone()
		return
	}
	c.records = append(c.records, r.Clone())
}

func (c *Controller) indexOf(id int64) int {
	for i, r := range c.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) notify(ctx context.Context, ch Change, r Record) {
	if c.observe == nil {
		return
	}
	rec := r.Clone()
	ch.RecordID = rec.ID
	ch.Record = &rec
	c.observe(ctx, ch)
}

func cloneAll(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

type confirmKey struct{}

// WithConfirmation records the user's answer to a confirmation prompt.
func WithConfirmation(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, yes)
}

// ContextConfirmer approves a delete only when the context carries an
// explicit yes from WithConfirmation.
func ContextConfirmer(ctx context.Context, _ Record) bool {
	yes, _ := ctx.Value(confirmKey{}).(bool)
	return yes
}
