// Package domain lists the resource pages of the application.
package domain

import (
	"sort"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/appointment"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/doctor"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/exam"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/inventory"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/measurement"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/medication"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/patient"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/reminder"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// Page pairs a schema with the fixtures used to seed mock and local stores.
type Page struct {
	Schema   *resource.Schema
	Fixtures []resource.Record
}

// Pages returns a fresh copy of every page definition.
func Pages() map[string]Page {
	pages := []Page{
		{patient.Schema(), patient.Fixtures()},
		{doctor.Schema(), doctor.Fixtures()},
		{medication.Schema(), medication.Fixtures()},
		{inventory.Schema(), inventory.Fixtures()},
		{appointment.Schema(), appointment.Fixtures()},
		{exam.Schema(), exam.Fixtures()},
		{reminder.Schema(), reminder.Fixtures()},
		{measurement.Schema(), measurement.Fixtures()},
	}
	out := make(map[string]Page, len(pages))
	for _, p := range pages {
		out[p.Schema.Name] = p
	}
	return out
}

// Names returns the page names in alphabetical order.
func Names() []string {
	pages := Pages()
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
