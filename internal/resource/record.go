package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one stored entity of a resource type. ID is assigned by the
// store at creation and never changes afterwards.
type Record struct {
	ID     int64          `json:"id"`
	Fields map[string]any `json:"-"`
}

// NewRecord builds a record from the given field values.
func NewRecord(id int64, fields map[string]any) Record {
	r := Record{ID: id, Fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		r.Fields[k] = v
	}
	return r
}

// Clone returns a deep enough copy for callers to mutate freely.
func (r Record) Clone() Record {
	return NewRecord(r.ID, r.Fields)
}

// Get returns the raw value of a field.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// String renders a field as text. Numbers use their shortest decimal form so
// that 95 becomes "95" and 12.9 becomes "12.9".
func (r Record) String(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int returns a field as an integer. JSON decoding yields float64 and
// json.Number, the memory store keeps int64; all are accepted as long as
// they hold a whole number. A fractional value reports false rather than
// being truncated; use Float for those.
func (r Record) Int(name string) (int64, bool) {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return wholeNumber(t)
	case float32:
		return wholeNumber(float64(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return wholeNumber(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func wholeNumber(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// Float returns a field as a decimal.
func (r Record) Float(name string) (float64, bool) {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// MarshalJSON writes the record as a flat object: {"id": 1, "name": "..."}.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat object. Numbers are kept as json.Number so that
// integer fields survive the round trip without float rounding.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	r.ID = 0
	if v, ok := raw["id"]; ok {
		tmp := Record{Fields: map[string]any{"id": v}}
		id, ok := tmp.Int("id")
		if !ok {
			return fmt.Errorf("record id %v is not an integer", v)
		}
		r.ID = id
		delete(raw, "id")
	}
	r.Fields = raw
	return nil
}
