// Package patient defines the patients page.
package patient

import (
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/format"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// Schema returns the patients page schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "patients",
		Singular: "patient",
		Path:     "/patients",
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Required: true, Searchable: true},
			{Name: "taxId", Label: "CPF", Required: true, Searchable: true},
			{Name: "birthDate", Label: "Birth date", Kind: resource.Date, Required: true},
			{Name: "phone", Label: "Phone", Required: true},
			{Name: "email", Label: "Email"},
			{Name: "address", Label: "Address"},
		},
		Format: func(r resource.Record) map[string]string {
			return map[string]string{
				"taxId":     format.CPF(r.String("taxId")),
				"birthDate": format.Date(r.String("birthDate")),
				"phone":     format.Phone(r.String("phone")),
			}
		},
	}
}

// Fixtures returns the records a mock-mode page starts with.
func Fixtures() []resource.Record {
	return []resource.Record{
		resource.NewRecord(1, map[string]any{
			"name":      "João Silva",
			"taxId":     "12345678901",
			"birthDate": "1980-05-15",
			"phone":     "11987654321",
			"email":     "joao@exemplo.com",
			"address":   "Rua das Flores, 123",
		}),
		resource.NewRecord(2, map[string]any{
			"name":      "Maria Oliveira",
			"taxId":     "98765432109",
			"birthDate": "1990-08-20",
			"phone":     "21912345678",
			"email":     "maria@exemplo.com",
			"address":   "Av. Paulista, 1000",
		}),
	}
}
