// Package appointment defines the appointments page.
package appointment

import (
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/format"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/status"
)

// Statuses an appointment can be patched to.
var Statuses = []string{"scheduled", "completed", "cancelled"}

// Schema returns the appointments page schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "appointments",
		Singular: "appointment",
		Path:     "/appointments",
		Fields: []resource.Field{
			{Name: "patient", Label: "Patient", Required: true, Searchable: true},
			{Name: "doctor", Label: "Doctor", Required: true, Searchable: true},
			{Name: "specialty", Label: "Specialty", Required: true, Searchable: true},
			{Name: "date", Label: "Date", Kind: resource.Date, Required: true},
			{Name: "time", Label: "Time", Kind: resource.Time, Required: true},
			{Name: "notes", Label: "Notes"},
			{Name: "status", Label: "Status", Kind: resource.Choice, Default: "scheduled", Options: Statuses},
		},
		Classify: func(r resource.Record, now time.Time) map[string]string {
			return map[string]string{"schedule": status.Schedule(r.String("date"), r.String("time"), now)}
		},
		Format: func(r resource.Record) map[string]string {
			return map[string]string{"date": format.Date(r.String("date"))}
		},
	}
}

func Fixtures() []resource.Record {
	return []resource.Record{
		resource.NewRecord(1, map[string]any{
			"patient":   "João Silva",
			"doctor":    "Dr. Carlos Andrade",
			"specialty": "Cardiologia",
			"date":      "2023-06-15",
			"time":      "14:00",
			"notes":     "Trazer exames recentes",
			"status":    "scheduled",
		}),
		resource.NewRecord(2, map[string]any{
			"patient":   "Maria Oliveira",
			"doctor":    "Dra. Ana Paula",
			"specialty": "Dermatologia",
			"date":      "2023-06-20",
			"time":      "10:30",
			"notes":     "Avaliação de manchas na pele",
			"status":    "scheduled",
		}),
	}
}
