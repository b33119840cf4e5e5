package workspace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/store"
)

// StoreFactory returns the store backing one page of a new workspace.
type StoreFactory func(ctx context.Context, page domain.Page) (resource.Store, error)

// Seeder is a store that can be filled with fixtures when empty.
type Seeder interface {
	resource.Store
	Seed(ctx context.Context, fixtures []resource.Record) (bool, error)
}

// MemoryStores gives every workspace its own copy of the fixtures.
func MemoryStores() StoreFactory {
	return func(_ context.Context, page domain.Page) (resource.Store, error) {
		return store.NewMemory(page.Fixtures...), nil
	}
}

// RemoteStores points every page at its collection under baseURL.
func RemoteStores(baseURL string, tokens store.TokenSource, client *http.Client) StoreFactory {
	return func(_ context.Context, page domain.Page) (resource.Store, error) {
		return store.NewRemote(baseURL, page.Schema.Path, tokens, client), nil
	}
}

// LevelStores shares one LevelDB collection per page between workspaces.
// Fixtures are written once at startup through Seed, never per workspace.
func LevelStores(db *leveldb.DB) StoreFactory {
	return func(_ context.Context, page domain.Page) (resource.Store, error) {
		return store.NewLevel(db, page.Schema.Name), nil
	}
}

// PostgresStores is LevelStores backed by the resource_records table.
func PostgresStores(pool *pgxpool.Pool) StoreFactory {
	return func(_ context.Context, page domain.Page) (resource.Store, error) {
		return store.NewPostgres(pool, page.Schema.Name), nil
	}
}

// Seed writes the fixtures of every page whose collection is still empty
// and returns the names of the pages it seeded.
func Seed(ctx context.Context, factory func(name string) Seeder) ([]string, error) {
	pages := domain.Pages()
	var done []string
	for _, name := range domain.Names() {
		ok, err := factory(name).Seed(ctx, pages[name].Fixtures)
		if err != nil {
			return done, fmt.Errorf("seed %s: %w", name, err)
		}
		if ok {
			done = append(done, name)
		}
	}
	return done, nil
}

// LevelSeeder opens the LevelDB store of a page for Seed.
func LevelSeeder(db *leveldb.DB) func(string) Seeder {
	return func(name string) Seeder { return store.NewLevel(db, name) }
}

// PostgresSeeder opens the PostgreSQL store of a page for Seed.
func PostgresSeeder(pool *pgxpool.Pool) func(string) Seeder {
	return func(name string) Seeder { return store.NewPostgres(pool, name) }
}
