package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// queryable is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Postgres keeps one resource collection in the resource_records table,
// one JSONB document per record.
type Postgres struct {
	db       queryable
	resource string
}

// NewPostgres returns the store for one resource. db is usually the pool.
func NewPostgres(db queryable, resourceName string) *Postgres {
	return &Postgres{db: db, resource: resourceName}
}

// Seed inserts the fixtures, keeping their ids, when the collection is
// empty and moves the id sequence past them. Rows that already exist are
// left alone, so two processes seeding at once write each fixture once.
// It reports whether anything was written.
func (s *Postgres) Seed(ctx context.Context, fixtures []resource.Record) (bool, error) {
	var n int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM resource_records WHERE resource = $1`, s.resource,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("count %s: %w", s.resource, err)
	}
	if n > 0 || len(fixtures) == 0 {
		return false, nil
	}
	var written int64
	for _, r := range fixtures {
		data, err := json.Marshal(r.Fields)
		if err != nil {
			return false, fmt.Errorf("encode fixture %d: %w", r.ID, err)
		}
		tag, err := s.db.Exec(ctx,
			`INSERT INTO resource_records (resource, id, data) VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (resource, id) DO NOTHING`,
			s.resource, r.ID, string(data),
		)
		if err != nil {
			return false, fmt.Errorf("seed %s %d: %w", s.resource, r.ID, err)
		}
		written += tag.RowsAffected()
	}
	if written == 0 {
		return false, nil
	}
	if _, err := s.db.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('resource_records', 'id'),
			GREATEST((SELECT MAX(id) FROM resource_records), 1))`,
	); err != nil {
		return false, fmt.Errorf("advance id sequence: %w", err)
	}
	return true, nil
}

func (s *Postgres) List(ctx context.Context) ([]resource.Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, data FROM resource_records WHERE resource = $1 ORDER BY id`, s.resource)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.resource, err)
	}
	defer rows.Close()

	out := []resource.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.resource, err)
	}
	return out, nil
}

func (s *Postgres) Create(ctx context.Context, r resource.Record) (resource.Record, error) {
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return resource.Record{}, fmt.Errorf("encode record: %w", err)
	}
	row := s.db.QueryRow(ctx,
		`INSERT INTO resource_records (resource, data) VALUES ($1, $2::jsonb) RETURNING id, data`,
		s.resource, string(data))
	rec, err := scanRecord(row)
	if err != nil {
		return resource.Record{}, fmt.Errorf("create %s: %w", s.resource, err)
	}
	return rec, nil
}

func (s *Postgres) Update(ctx context.Context, r resource.Record) (resource.Record, error) {
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return resource.Record{}, fmt.Errorf("encode record: %w", err)
	}
	row := s.db.QueryRow(ctx,
		`UPDATE resource_records SET data = $3::jsonb, updated_at = NOW()
		WHERE resource = $1 AND id = $2 RETURNING id, data`,
		s.resource, r.ID, string(data))
	return s.scanOne(row, "update", r.ID)
}

func (s *Postgres) Patch(ctx context.Context, id int64, fields map[string]any) (resource.Record, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return resource.Record{}, fmt.Errorf("encode fields: %w", err)
	}
	row := s.db.QueryRow(ctx,
		`UPDATE resource_records SET data = data || $3::jsonb, updated_at = NOW()
		WHERE resource = $1 AND id = $2 RETURNING id, data`,
		s.resource, id, string(data))
	return s.scanOne(row, "patch", id)
}

func (s *Postgres) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM resource_records WHERE resource = $1 AND id = $2`, s.resource, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", s.resource, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("id %d: %w", id, resource.ErrNotFound)
	}
	return nil
}

func (s *Postgres) scanOne(row pgx.Row, op string, id int64) (resource.Record, error) {
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return resource.Record{}, fmt.Errorf("id %d: %w", id, resource.ErrNotFound)
	}
	if err != nil {
		return resource.Record{}, fmt.Errorf("%s %s %d: %w", op, s.resource, id, err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (resource.Record, error) {
	var id int64
	var data []byte
	if err := row.Scan(&id, &data); err != nil {
		return resource.Record{}, err
	}
	var r resource.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return resource.Record{}, fmt.Errorf("decode record %d: %w", id, err)
	}
	r.ID = id
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	return r, nil
}
