// Package doctor defines the doctors page.
package doctor

import (
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/format"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// Schema returns the doctors page schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "doctors",
		Singular: "doctor",
		Path:     "/doctors",
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Required: true, Searchable: true},
			{Name: "crm", Label: "CRM", Required: true, Searchable: true},
			{Name: "specialty", Label: "Specialty", Required: true, Searchable: true},
			{Name: "phone", Label: "Phone", Required: true},
			{Name: "email", Label: "Email"},
			{Name: "address", Label: "Address"},
		},
		Format: func(r resource.Record) map[string]string {
			return map[string]string{
				"crm":   format.CRM(r.String("crm")),
				"phone": format.Phone(r.String("phone")),
			}
		},
	}
}

func Fixtures() []resource.Record {
	return []resource.Record{
		resource.NewRecord(1, map[string]any{
			"name":      "Dr. Carlos Andrade",
			"crm":       "SP123456",
			"specialty": "Cardiologia",
			"phone":     "(11) 98765-4321",
			"email":     "carlos.andrade@clinica.com",
			"address":   "Av. Paulista, 1000, São Paulo - SP",
		}),
		resource.NewRecord(2, map[string]any{
			"name":      "Dra. Ana Paula Silva",
			"crm":       "SP654321",
			"specialty": "Dermatologia",
			"phone":     "(11) 91234-5678",
			"email":     "ana.silva@clinica.com",
			"address":   "R. Oscar Freire, 2000, São Paulo - SP",
		}),
	}
}
