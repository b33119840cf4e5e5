package resource

import (
	"encoding/json"
	"testing"
)

func TestSchema_RequiredAndSearchable(t *testing.T) {
	s := patientSchema()
	if got := s.Required(); len(got) != 4 || got[0] != "name" || got[3] != "phone" {
		t.Errorf("Required() = %v", got)
	}
	if got := s.Searchable(); len(got) != 2 || got[1] != "taxId" {
		t.Errorf("Searchable() = %v", got)
	}
}

func TestSchema_DefaultDraft(t *testing.T) {
	s := &Schema{Fields: []Field{
		{Name: "form", Kind: Choice, Default: "tablet", Options: []string{"tablet", "capsule"}},
		{Name: "name"},
	}}
	d := s.DefaultDraft()
	if d["form"] != "tablet" || d["name"] != "" {
		t.Errorf("DefaultDraft() = %v", d)
	}
}

func TestSchema_ValidateParsesKinds(t *testing.T) {
	s := &Schema{Fields: []Field{
		{Name: "quantity", Label: "Quantity", Kind: Integer, Required: true},
		{Name: "price", Label: "Price", Kind: Decimal},
		{Name: "date", Label: "Date", Kind: Date},
		{Name: "time", Label: "Time", Kind: Time},
	}}
	out, err := s.Validate(Draft{"quantity": " 25 ", "price": "12,90", "date": "2024-03-10", "time": "14:30"})
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if out["quantity"] != int64(25) {
		t.Errorf("quantity = %#v", out["quantity"])
	}
	if out["price"] != 12.9 {
		t.Errorf("price = %#v", out["price"])
	}
	if out["date"] != "2024-03-10" || out["time"] != "14:30" {
		t.Errorf("date/time = %v %v", out["date"], out["time"])
	}
}

func TestSchema_ValidateEmptyOptionalDecimal(t *testing.T) {
	s := &Schema{Fields: []Field{{Name: "price", Label: "Price", Kind: Decimal}}}
	out, err := s.Validate(Draft{})
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if out["price"] != float64(0) {
		t.Errorf("price = %#v", out["price"])
	}
}

func TestSchema_ValidateRejectsBadDate(t *testing.T) {
	s := &Schema{Fields: []Field{{Name: "date", Label: "Date", Kind: Date, Required: true}}}
	if _, err := s.Validate(Draft{"date": "10/03/2024"}); !IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestSchema_ValidateMessageListsLabels(t *testing.T) {
	_, err := patientSchema().Validate(Draft{"name": "Ana"})
	want := "fill in the required fields: CPF, Birth date, Phone"
	if err == nil || err.Error() != want {
		t.Errorf("Validate() error = %v, want %q", err, want)
	}
}

func TestSchema_DraftFromRendersNumbers(t *testing.T) {
	s := measurementSchema()
	var r Record
	if err := json.Unmarshal([]byte(`{"id":4,"glucose":95,"systolic":120.0,"notes":"ok"}`), &r); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	d := s.DraftFrom(r)
	if d["glucose"] != "95" || d["notes"] != "ok" || d["date"] != "" {
		t.Errorf("DraftFrom() = %v", d)
	}
}

func TestRecord_JSONIsFlat(t *testing.T) {
	r := NewRecord(9, map[string]any{"name": "Ana", "quantity": int64(3)})
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if raw["id"] != float64(9) || raw["name"] != "Ana" {
		t.Errorf("unexpected JSON: %s", data)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back.ID != 9 {
		t.Errorf("id = %d", back.ID)
	}
	if q, ok := back.Int("quantity"); !ok || q != 3 {
		t.Errorf("quantity = %d, %v", q, ok)
	}
	if _, ok := back.Fields["id"]; ok {
		t.Error("id must not be duplicated into Fields")
	}
}

func TestRecord_RejectsNonIntegerID(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"id":"abc"}`), &r); err == nil {
		t.Error("expected error for non-integer id")
	}
}

func TestRecord_IntRejectsFractions(t *testing.T) {
	r := NewRecord(1, map[string]any{
		"whole":    float64(120),
		"fraction": 99.7,
		"number":   json.Number("99.7"),
	})
	if v, ok := r.Int("whole"); !ok || v != 120 {
		t.Errorf("Int(whole) = %d, %v; want 120, true", v, ok)
	}
	if _, ok := r.Int("fraction"); ok {
		t.Error("expected Int to reject 99.7")
	}
	if _, ok := r.Int("number"); ok {
		t.Error("expected Int to reject json.Number 99.7")
	}
	if v, ok := r.Float("fraction"); !ok || v != 99.7 {
		t.Errorf("Float(fraction) = %v, %v", v, ok)
	}
	var bad Record
	if err := json.Unmarshal([]byte(`{"id":1.5}`), &bad); err == nil {
		t.Error("expected error for fractional id")
	}
}
