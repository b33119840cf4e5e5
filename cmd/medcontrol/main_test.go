package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/api"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/config"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/events"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/middleware"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/workspace"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:              "development",
		StoreMode:        config.StoreMock,
		CORSOrigins:      []string{"http://localhost:3000"},
		ReminderInterval: time.Minute,
		SessionIdleTTL:   time.Hour,
		RequestTimeout:   5 * time.Second,
	}
}

func testServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	be, err := openBackend(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	t.Cleanup(be.close)

	m := workspace.NewManager(workspace.Options{Stores: be.stores, Logger: zerolog.Nop(), DisablePoller: true})
	t.Cleanup(m.Close)

	e := newServer(cfg, zerolog.Nop(), api.NewHandler(m, cfg.StoreMode, be.check, zerolog.Nop()))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	resp.Body.Close()
	return resp
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"serve", "migrate", "seed"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("expected %s subcommand, got %v", name, err)
		}
	}
	if cmd, _, err := root.Find([]string{"migrate", "status"}); err != nil || cmd.Name() != "status" {
		t.Errorf("expected migrate status, got %v", err)
	}
}

func TestServer_DevMode(t *testing.T) {
	srv := testServer(t, testConfig())

	resp := get(t, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}

	resp = get(t, srv.URL+"/api/v1/pages", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected dev user to get pages, got %d", resp.StatusCode)
	}
}

func TestServer_JWTMode(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"
	cfg.AuthSigningKey = strings.Repeat("s", 32)
	srv := testServer(t, cfg)

	if resp := get(t, srv.URL+"/health", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("expected public health check, got %d", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/api/v1/pages", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "nurse-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(cfg.AuthSigningKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if resp := get(t, srv.URL+"/api/v1/pages", signed); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestOpenBackend_LevelDB(t *testing.T) {
	cfg := testConfig()
	cfg.StoreMode = config.StoreLevelDB
	cfg.LevelDBPath = t.TempDir()
	srv := testServer(t, cfg)

	if resp := get(t, srv.URL+"/health/store", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("expected healthy leveldb store, got %d", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/api/v1/pages/patients", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestOpenBackend_LevelDBSeedsAtStartup(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.StoreMode = config.StoreLevelDB
	cfg.LevelDBPath = t.TempDir()

	be, err := openBackend(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("openBackend() error: %v", err)
	}
	defer be.close()

	page := domain.Pages()["patients"]
	s, err := be.stores(ctx, page)
	if err != nil {
		t.Fatalf("stores() error: %v", err)
	}
	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != len(page.Fixtures) {
		t.Errorf("expected %d seeded patients, got %d", len(page.Fixtures), len(recs))
	}
}

func TestOpenBackend_Remote(t *testing.T) {
	cfg := testConfig()
	cfg.StoreMode = config.StoreRemote
	cfg.APIBaseURL = "http://127.0.0.1:1"
	cfg.APITimeout = time.Second

	be, err := openBackend(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer be.close()
	details, err := be.check(context.Background())
	if err != nil || details["base_url"] != cfg.APIBaseURL {
		t.Errorf("unexpected check result %v, %v", details, err)
	}
}

func TestOpenBackend_Unknown(t *testing.T) {
	cfg := testConfig()
	cfg.StoreMode = "redis"
	if _, err := openBackend(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNewPublisher(t *testing.T) {
	cfg := testConfig()
	if _, ok := newPublisher(cfg, zerolog.Nop()).(events.Nop); !ok {
		t.Error("expected Nop publisher without brokers")
	}
	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaTopic = "medcontrol.events"
	p := newPublisher(cfg, zerolog.Nop())
	defer p.Close()
	if _, ok := p.(*events.Kafka); !ok {
		t.Errorf("expected Kafka publisher, got %T", p)
	}
}
