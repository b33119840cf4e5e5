// Package reminder defines the reminders page.
package reminder

import (
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/format"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/status"
)

// Reminder states.
const (
	Pending = "pending"
	Done    = "done"
)

// Schema returns the reminders page schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "reminders",
		Singular: "reminder",
		Path:     "/reminders",
		Fields: []resource.Field{
			{Name: "title", Label: "Title", Required: true, Searchable: true},
			{Name: "description", Label: "Description", Searchable: true},
			{Name: "date", Label: "Date", Kind: resource.Date, Required: true},
			{Name: "time", Label: "Time", Kind: resource.Time},
			{
				Name: "priority", Label: "Priority", Kind: resource.Choice,
				Default: status.Low, Options: []string{status.High, status.Medium, status.Low},
			},
			{Name: "status", Label: "Status", Kind: resource.Choice, Default: Pending, Options: []string{Pending, Done}},
		},
		Classify: func(r resource.Record, now time.Time) map[string]string {
			out := map[string]string{"priority": status.Priority(r.String("priority")), "due": "no"}
			if IsDue(r, now) {
				out["due"] = "yes"
			}
			return out
		},
		Format: func(r resource.Record) map[string]string {
			return map[string]string{"date": format.Date(r.String("date"))}
		},
	}
}

// IsDue reports whether a reminder is still pending and its date and time
// have been reached.
func IsDue(r resource.Record, now time.Time) bool {
	if r.String("status") == Done {
		return false
	}
	at, ok := status.When(r.String("date"), r.String("time"), now.Location())
	return ok && !at.After(now)
}

// Due returns the due reminders among records, in collection order.
func Due(records []resource.Record, now time.Time) []resource.Record {
	var out []resource.Record
	for _, r := range records {
		if IsDue(r, now) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func Fixtures() []resource.Record {
	return []resource.Record{
		resource.NewRecord(1, map[string]any{
			"title":       "Consulta médica",
			"description": "Consulta com cardiologista às 14h",
			"date":        "2023-06-15",
			"time":        "",
			"priority":    status.High,
			"status":      Pending,
		}),
		resource.NewRecord(2, map[string]any{
			"title":       "Pagamento de conta",
			"description": "Pagar conta de luz até o dia 20",
			"date":        "2023-06-20",
			"time":        "",
			"priority":    status.Medium,
			"status":      Pending,
		}),
	}
}
