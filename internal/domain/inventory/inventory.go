// Package inventory defines the registered medications page: packs on hand
// with barcode, quantity and price.
package inventory

import (
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/format"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/status"
)

// Forms offered by the inventory form.
var Forms = []string{
	"Tablet",
	"Capsule",
	"Syrup",
	"Ointment",
	"Injectable",
	"Suppository",
	"Drops",
	"Spray",
	"Other",
}

// Schema returns the inventory page schema.
func Schema() *resource.Schema {
	return &resource.Schema{
		Name:     "inventory",
		Singular: "registered medication",
		Path:     "/inventory",
		Fields: []resource.Field{
			{Name: "name", Label: "Name", Required: true, Searchable: true},
			{Name: "activeIngredient", Label: "Active ingredient", Required: true, Searchable: true},
			{Name: "manufacturer", Label: "Manufacturer"},
			{Name: "dosage", Label: "Dosage", Required: true},
			{Name: "form", Label: "Pharmaceutical form", Kind: resource.Choice, Required: true, Options: Forms},
			{Name: "barcode", Label: "Barcode", Searchable: true},
			{Name: "quantity", Label: "Quantity", Kind: resource.Integer, Required: true},
			{Name: "price", Label: "Price", Kind: resource.Decimal},
		},
		Classify: classify,
		Format: func(r resource.Record) map[string]string {
			out := map[string]string{"price": "-"}
			if p, ok := r.Float("price"); ok && p > 0 {
				out["price"] = format.Currency(p)
			}
			return out
		},
	}
}

func classify(r resource.Record, _ time.Time) map[string]string {
	q, _ := r.Int("quantity")
	return map[string]string{"stock": status.Stock(q)}
}

func Fixtures() []resource.Record {
	return []resource.Record{
		resource.NewRecord(1, map[string]any{
			"name":             "Paracetamol",
			"activeIngredient": "Paracetamol",
			"manufacturer":     "EMS",
			"dosage":           "750mg",
			"form":             "Tablet",
			"barcode":          "7896016801586",
			"quantity":         int64(50),
			"price":            12.90,
		}),
		resource.NewRecord(2, map[string]any{
			"name":             "Ibuprofeno",
			"activeIngredient": "Ibuprofeno",
			"manufacturer":     "Eurofarma",
			"dosage":           "400mg",
			"form":             "Capsule",
			"barcode":          "7896181919935",
			"quantity":         int64(30),
			"price":            18.50,
		}),
	}
}
