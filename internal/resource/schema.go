package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldKind tells the controller how to parse a draft value before storing it.
type FieldKind int

const (
	Text FieldKind = iota
	Date
	Time
	Integer
	Decimal
	Choice
)

func (k FieldKind) String() string {
	switch k {
	case Text:
		return "text"
	case Date:
		return "date"
	case Time:
		return "time"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Choice:
		return "choice"
	default:
		return "unknown"
	}
}

// Field describes one form input of a resource page.
type Field struct {
	Name       string
	Label      string
	Kind       FieldKind
	Required   bool
	Searchable bool
	Default    string
	Options    []string
}

// Classifier derives status labels for a record. It is evaluated on every
// view and never cached, so date-based labels follow the clock.
type Classifier func(r Record, now time.Time) map[string]string

// Formatter renders display strings (CPF, phone, currency...) for a record.
type Formatter func(r Record) map[string]string

// Schema parametrizes a Controller for one resource type.
type Schema struct {
	// Name identifies the page, e.g. "patients".
	Name string
	// Singular is used in user-facing messages.
	Singular string
	// Path is the REST collection path, e.g. "/patients".
	Path     string
	Fields   []Field
	Classify Classifier
	Format   Formatter
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required lists the names of the required fields, in schema order.
func (s *Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Searchable lists the fields the search term is matched against.
func (s *Schema) Searchable() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Searchable {
			out = append(out, f.Name)
		}
	}
	return out
}

// DefaultDraft returns a fresh draft holding every field's default value.
func (s *Schema) DefaultDraft() Draft {
	d := make(Draft, len(s.Fields))
	for _, f := range s.Fields {
		d[f.Name] = f.Default
	}
	return d
}

// DraftFrom renders a stored record into the form representation.
func (s *Schema) DraftFrom(r Record) Draft {
	d := make(Draft, len(s.Fields))
	for _, f := range s.Fields {
		d[f.Name] = r.String(f.Name)
	}
	return d
}

// Validate checks required fields and parses every value into its stored
// representation. The returned map holds all schema fields.
func (s *Schema) Validate(d Draft) (map[string]any, error) {
	var missing []string
	for _, f := range s.Fields {
		if f.Required && strings.TrimSpace(d[f.Name]) == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Fields:  missing,
			Message: "fill in the required fields: " + strings.Join(missing, ", "),
		}
	}

	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v, err := f.parse(d[f.Name])
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// ParsePartial parses only the given fields, for PATCH style updates.
func (s *Schema) ParsePartial(values map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for name, raw := range values {
		f, ok := s.Field(name)
		if !ok {
			return nil, &ValidationError{Fields: []string{name}, Message: fmt.Sprintf("unknown field %q", name)}
		}
		if f.Required && strings.TrimSpace(raw) == "" {
			return nil, &ValidationError{Fields: []string{f.Label}, Message: f.Label + " is required"}
		}
		v, err := f.parse(raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func (f Field) parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case Integer:
		if raw == "" {
			return int64(0), nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, f.malformed(raw, "a whole number")
		}
		return n, nil
	case Decimal:
		if raw == "" {
			return float64(0), nil
		}
		n, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			return nil, f.malformed(raw, "a number")
		}
		return n, nil
	case Date:
		if raw != "" {
			if _, err := time.Parse(DateLayout, raw); err != nil {
				return nil, f.malformed(raw, "a date (YYYY-MM-DD)")
			}
		}
		return raw, nil
	case Time:
		if raw != "" {
			if _, err := time.Parse(TimeLayout, raw); err != nil {
				return nil, f.malformed(raw, "a time (HH:MM)")
			}
		}
		return raw, nil
	case Choice:
		if raw != "" && len(f.Options) > 0 && !contains(f.Options, raw) {
			return nil, &ValidationError{
				Fields:  []string{f.Label},
				Message: fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(f.Options, ", ")),
			}
		}
		return raw, nil
	default:
		return raw, nil
	}
}

func (f Field) malformed(raw, want string) error {
	return &ValidationError{
		Fields:  []string{f.Label},
		Message: fmt.Sprintf("%s must be %s, got %q", f.Label, want, raw),
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Layouts used by Date and Time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
