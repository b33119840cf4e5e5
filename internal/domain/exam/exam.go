// Package exam defines the exams page. The result field is filled in later
// with a partial update once the lab reports back.
package exam

import (
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/format"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/status"
)

// Schema returns the exams page schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "exams",
		Singular: "exam",
		Path:     "/exams",
		Fields: []resource.Field{
			{Name: "type", Label: "Exam type", Required: true, Searchable: true},
			{Name: "patient", Label: "Patient", Required: true, Searchable: true},
			{Name: "date", Label: "Date", Kind: resource.Date, Required: true},
			{Name: "time", Label: "Time", Kind: resource.Time, Required: true},
			{Name: "location", Label: "Location", Required: true, Searchable: true},
			{Name: "requestingDoctor", Label: "Requesting doctor"},
			{Name: "notes", Label: "Notes"},
			{Name: "result", Label: "Result"},
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
			"type":             "Hemograma completo",
			"patient":          "João Silva",
			"date":             "2023-06-15",
			"time":             "08:00",
			"location":         "Laboratório ABC",
			"requestingDoctor": "Dr. Carlos Andrade",
			"notes":            "Jejum de 8 horas",
			"result":           "",
		}),
		resource.NewRecord(2, map[string]any{
			"type":             "Ressonância Magnética",
			"patient":          "Maria Oliveira",
			"date":             "2023-06-20",
			"time":             "14:30",
			"location":         "Clínica de Imagens XYZ",
			"requestingDoctor": "Dra. Ana Paula",
			"notes":            "Trazer exames anteriores",
			"result":           "",
		}),
	}
}
