package resource

import (
	"context"
	"time"
)

// Store persists the records of one resource type. Implementations assign
// ids on Create; Update replaces every field of the record with the given id.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, r Record) (Record, error)
	Update(ctx context.Context, r Record) (Record, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (Record, error)
	Delete(ctx context.Context, id int64) error
}

// Confirmer answers the yes/no question asked before a destructive action.
type Confirmer func(ctx context.Context, r Record) bool

// AlwaysConfirm approves every request.
func AlwaysConfirm(context.Context, Record) bool { return true }

// NeverConfirm declines every request.
func NeverConfirm(context.Context, Record) bool { return false }

// Action names a confirmed change to a collection.
type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Patched Action = "patched"
	Deleted Action = "deleted"
)

// Change describes a mutation acknowledged by the store.
type Change struct {
	Resource string    `json:"resource"`
	Action   Action    `json:"action"`
	RecordID int64     `json:"record_id"`
	Record   *Record   `json:"record,omitempty"`
	At       time.Time `json:"at"`
}

// Observer is notified after every acknowledged change.
type Observer func(ctx context.Context, c Change)
