// Package medication defines the medication catalog page: what a drug is,
// what it treats and when it must not be used. Stock is kept separately by
// the inventory page.
package medication

import "github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"

// Forms lists the pharmaceutical forms offered by the catalog form.
var Forms = []string{
	"tablet",
	"capsule",
	"liquid",
	"ointment",
	"cream",
	"gel",
	"injectable",
	"spray",
	"suppository",
}

// Schema returns the medication catalog schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "medications",
		Singular: "medication",
		Path:     "/medications",
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Required: true, Searchable: true},
			{Name: "activeIngredient", Label: "Active ingredient", Required: true, Searchable: true},
			{Name: "dosage", Label: "Dosage", Required: true},
			{Name: "form", Label: "Pharmaceutical form", Kind: resource.Choice, Default: "tablet", Options: Forms},
			{Name: "manufacturer", Label: "Manufacturer"},
			{Name: "indications", Label: "Indications"},
			{Name: "contraindications", Label: "Contraindications"},
		},
	}
}

func Fixtures() []resource.Record {
	return []resource.Record{
		resource.NewRecord(1, map[string]any{
			"name":              "Paracetamol",
			"activeIngredient":  "Paracetamol",
			"dosage":            "500mg",
			"form":              "tablet",
			"manufacturer":      "EMS",
			"indications":       "Dor e febre",
			"contraindications": "Hipersensibilidade ao paracetamol",
		}),
		resource.NewRecord(2, map[string]any{
			"name":              "Ibuprofeno",
			"activeIngredient":  "Ibuprofeno",
			"dosage":            "400mg",
			"form":              "tablet",
			"manufacturer":      "Eurofarma",
			"indications":       "Inflamação, dor e febre",
			"contraindications": "Úlcera gastroduodenal, insuficiência renal",
		}),
	}
}
