package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// OpenLevelDB opens (or creates) the database directory shared by every
// Level store of the process.
func OpenLevelDB(path string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return db, nil
}

type levelKey struct {
	db       *leveldb.DB
	resource string
}

// levelLocks holds one mutex per database and resource, shared by every
// Level built over them.
var levelLocks sync.Map

// Level keeps one resource collection in LevelDB. Records live under
// "<resource>/r/<zero padded id>" so a prefix scan returns them in id order;
// "<resource>/seq" holds the last id handed out. Every Level over the same
// db and resource serializes its writes on one lock, so ids stay unique
// across workspaces.
type Level struct {
	db       *leveldb.DB
	resource string
	mu       *sync.Mutex
}

// NewLevel returns the store for one resource inside db.
func NewLevel(db *leveldb.DB, resourceName string) *Level {
	mu, _ := levelLocks.LoadOrStore(levelKey{db: db, resource: resourceName}, &sync.Mutex{})
	return &Level{db: db, resource: resourceName, mu: mu.(*sync.Mutex)}
}

func (s *Level) recordKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s/r/%020d", s.resource, id))
}

func (s *Level) seqKey() []byte {
	return []byte(s.resource + "/seq")
}

func (s *Level) lastID() (int64, bool, error) {
	v, err := s.db.Get(s.seqKey(), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s sequence: %w", s.resource, err)
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt %s sequence %q: %w", s.resource, v, err)
	}
	return n, true, nil
}

// Seed writes the fixtures when the collection has never been used. It
// reports whether anything was written.
func (s *Level) Seed(_ context.Context, fixtures []resource.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok, err := s.lastID(); err != nil || ok {
		return false, err
	}
	batch := new(leveldb.Batch)
	var last int64
	for _, r := range fixtures {
		data, err := json.Marshal(r)
		if err != nil {
			return false, fmt.Errorf("encode fixture %d: %w", r.ID, err)
		}
		batch.Put(s.recordKey(r.ID), data)
		if r.ID > last {
			last = r.ID
		}
	}
	batch.Put(s.seqKey(), []byte(strconv.FormatInt(last, 10)))
	if err := s.db.Write(batch, nil); err != nil {
		return false, fmt.Errorf("seed %s: %w", s.resource, err)
	}
	return true, nil
}

func (s *Level) List(_ context.Context) ([]resource.Record, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(s.resource+"/r/")), nil)
	defer iter.Release()

	out := []resource.Record{}
	for iter.Next() {
		var r resource.Record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
		out = append(out, r)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.resource, err)
	}
	return out, nil
}

func (s *Level) Create(_ context.Context, r resource.Record) (resource.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, _, err := s.lastID()
	if err != nil {
		return resource.Record{}, err
	}
	rec := r.Clone()
	rec.ID = last + 1
	data, err := json.Marshal(rec)
	if err != nil {
		return resource.Record{}, fmt.Errorf("encode record: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(s.recordKey(rec.ID), data)
	batch.Put(s.seqKey(), []byte(strconv.FormatInt(rec.ID, 10)))
	if err := s.db.Write(batch, nil); err != nil {
		return resource.Record{}, fmt.Errorf("create %s: %w", s.resource, err)
	}
	return rec, nil
}

func (s *Level) Update(_ context.Context, r resource.Record) (resource.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(r.ID); err != nil {
		return resource.Record{}, err
	}
	if err := s.put(r); err != nil {
		return resource.Record{}, err
	}
	return r.Clone(), nil
}

func (s *Level) Patch(_ context.Context, id int64, fields map[string]any) (resource.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.get(id)
	if err != nil {
		return resource.Record{}, err
	}
	for k, v := range fields {
		rec.Fields[k] = v
	}
	if err := s.put(rec); err != nil {
		return resource.Record{}, err
	}
	return rec, nil
}

func (s *Level) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(id); err != nil {
		return err
	}
	if err := s.db.Delete(s.recordKey(id), nil); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.resource, id, err)
	}
	return nil
}

func (s *Level) get(id int64) (resource.Record, error) {
	data, err := s.db.Get(s.recordKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return resource.Record{}, fmt.Errorf("id %d: %w", id, resource.ErrNotFound)
	}
	if err != nil {
		return resource.Record{}, fmt.Errorf("read %s %d: %w", s.resource, id, err)
	}
	var r resource.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return resource.Record{}, fmt.Errorf("decode %s %d: %w", s.resource, id, err)
	}
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	return r, nil
}

func (s *Level) put(r resource.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.db.Put(s.recordKey(r.ID), data, nil); err != nil {
		return fmt.Errorf("write %s %d: %w", s.resource, r.ID, err)
	}
	return nil
}
