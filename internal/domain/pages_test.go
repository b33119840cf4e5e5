package domain

import (
	"testing"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

func TestPages_AllDefined(t *testing.T) {
	want := []string{"appointments", "doctors", "exams", "inventory", "measurements", "medications", "patients", "reminders"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPages_FixturesSatisfySchema(t *testing.T) {
	for name, p := range Pages() {
		if p.Schema.Path == "" || p.Schema.Path[0] != '/' {
			t.Errorf("%s: bad path %q", name, p.Schema.Path)
		}
		seen := map[int64]bool{}
		for _, r := range p.Fixtures {
			if seen[r.ID] {
				t.Errorf("%s: duplicate fixture id %d", name, r.ID)
			}
			seen[r.ID] = true
			if _, err := p.Schema.Validate(p.Schema.DraftFrom(r)); err != nil {
				t.Errorf("%s fixture %d does not validate: %v", name, r.ID, err)
			}
		}
	}
}

func TestPages_SearchableFieldsExist(t *testing.T) {
	for name, p := range Pages() {
		if len(p.Schema.Searchable()) == 0 {
			t.Errorf("%s has no searchable fields", name)
		}
		for _, f := range p.Schema.Searchable() {
			if _, ok := p.Schema.Field(f); !ok {
				t.Errorf("%s: unknown searchable field %s", name, f)
			}
		}
	}
}

func TestPages_PatientSearch(t *testing.T) {
	p := Pages()["patients"]
	got := resource.Filter(p.Fixtures, p.Schema.Searchable(), "9876")
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("search by CPF: %+v", got)
	}
}
