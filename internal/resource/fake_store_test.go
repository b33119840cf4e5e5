package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errBackendDown = errors.New("backend down")

// fakeStore is an in-process Store whose calls can be made to fail or block.
type fakeStore struct {
	mu      sync.Mutex
	records []Record
	last    int64
	fail    bool
	calls   []string
	block   chan struct{}
	entered chan struct{}
}

func newFakeStore(seed ...Record) *fakeStore {
	s := &fakeStore{}
	for _, r := range seed {
		s.records = append(s.records, r.Clone())
		if r.ID > s.last {
			s.last = r.ID
		}
	}
	return s
}

func (s *fakeStore) begin(op string) error {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	block, entered, fail := s.block, s.entered, s.fail
	s.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if fail {
		return errBackendDown
	}
	return nil
}

func (s *fakeStore) List(context.Context) ([]Record, error) {
	if err := s.begin("list"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.records), nil
}

func (s *fakeStore) Create(_ context.Context, r Record) (Record, error) {
	if err := s.begin("create"); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	rec := r.Clone()
	rec.ID = s.last
	s.records = append(s.records, rec)
	return rec.Clone(), nil
}

func (s *fakeStore) Update(_ context.Context, r Record) (Record, error) {
	if err := s.begin("update"); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == r.ID {
			s.records[i] = r.Clone()
			return r.Clone(), nil
		}
	}
	return Record{}, fmt.Errorf("id %d: %w", r.ID, ErrNotFound)
}

func (s *fakeStore) Patch(_ context.Context, id int64, fields map[string]any) (Record, error) {
	if err := s.begin("patch"); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			for k, v := range fields {
				s.records[i].Fields[k] = v
			}
			return s.records[i].Clone(), nil
		}
	}
	return Record{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if err := s.begin("delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i:i], s.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("id %d: %w", id, ErrNotFound)
}

func (s *fakeStore) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func (s *fakeStore) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == op {
			n++
		}
	}
	return n
}

// patientSchema mirrors the patients page: four required fields, search on
// name and taxId.
func patientSchema() *Schema {
	return &Schema{
		Name:     "patients",
		Singular: "patient",
		Path:     "/patients",
		Fields: []Field{
			{Name: "name", Label: "Name", Required: true, Searchable: true},
			{Name: "taxId", Label: "CPF", Required: true, Searchable: true},
			{Name: "birthDate", Label: "Birth date", Kind: Date, Required: true},
			{Name: "phone", Label: "Phone", Required: true},
			{Name: "email", Label: "Email"},
			{Name: "address", Label: "Address"},
		},
	}
}

func measurementSchema() *Schema {
	return &Schema{
		Name:     "measurements",
		Singular: "measurement",
		Fields: []Field{
			{Name: "date", Label: "Date", Kind: Date, Required: true, Searchable: true},
			{Name: "time", Label: "Time", Kind: Time, Required: true},
			{Name: "glucose", Label: "Glucose", Kind: Integer, Required: true},
			{Name: "systolic", Label: "Systolic", Kind: Integer, Required: true},
			{Name: "diastolic", Label: "Diastolic", Kind: Integer, Required: true},
			{Name: "notes", Label: "Notes", Searchable: true},
		},
	}
}
