package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func newBackend(t *testing.T, status int, response string, seen *[]recordedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &req.Body)
		}
		*seen = append(*seen, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote_ListSendsBearer(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusOK, `[{"id":1,"name":"João Silva"},{"id":2,"name":"Maria Oliveira"}]`, &seen)

	s := NewRemote(srv.URL, "/patients", StaticToken("tok-123"), nil)
	recs, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != 2 || recs[1].String("name") != "Maria Oliveira" {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if seen[0].Method != http.MethodGet || seen[0].Path != "/patients" {
		t.Errorf("unexpected request %s %s", seen[0].Method, seen[0].Path)
	}
	if seen[0].Auth != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", seen[0].Auth)
	}
}

func TestRemote_NoTokenNoHeader(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusOK, `[]`, &seen)

	s := NewRemote(srv.URL, "doctors", StaticToken(""), nil)
	recs, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
	if seen[0].Auth != "" {
		t.Errorf("expected no Authorization header, got %q", seen[0].Auth)
	}
	if seen[0].Path != "/doctors" {
		t.Errorf("expected /doctors, got %s", seen[0].Path)
	}
}

func TestRemote_CreatePostsFields(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusCreated, `{"id":7,"name":"Ana"}`, &seen)

	s := NewRemote(srv.URL+"/", "/patients", nil, nil)
	rec, err := s.Create(context.Background(), resource.NewRecord(0, map[string]any{"name": "Ana"}))
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if rec.ID != 7 {
		t.Errorf("expected id 7, got %d", rec.ID)
	}
	if seen[0].Method != http.MethodPost || seen[0].Body["name"] != "Ana" {
		t.Errorf("unexpected request: %+v", seen[0])
	}
	if _, ok := seen[0].Body["id"]; ok {
		t.Error("create body must not carry an id")
	}
}

func TestRemote_CreateWithoutIDFails(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusCreated, `{"name":"Ana"}`, &seen)

	s := NewRemote(srv.URL, "/patients", nil, nil)
	if _, err := s.Create(context.Background(), resource.NewRecord(0, nil)); err == nil {
		t.Error("expected error when backend assigns no id")
	}
}

func TestRemote_UpdatePutsByID(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusNoContent, ``, &seen)

	s := NewRemote(srv.URL, "/patients", nil, nil)
	rec, err := s.Update(context.Background(), resource.NewRecord(3, map[string]any{"phone": "999"}))
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if rec.ID != 3 || rec.String("phone") != "999" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if seen[0].Method != http.MethodPut || seen[0].Path != "/patients/3" {
		t.Errorf("unexpected request %s %s", seen[0].Method, seen[0].Path)
	}
}

func TestRemote_PatchEmptyResponse(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusNoContent, ``, &seen)

	s := NewRemote(srv.URL, "/appointments", nil, nil)
	rec, err := s.Patch(context.Background(), 4, map[string]any{"status": "completed"})
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	if rec.ID != 4 || rec.String("status") != "completed" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if seen[0].Method != http.MethodPatch || seen[0].Path != "/appointments/4" {
		t.Errorf("unexpected request %s %s", seen[0].Method, seen[0].Path)
	}
}

func TestRemote_DeleteNotFound(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusNotFound, `{"error":"missing"}`, &seen)

	s := NewRemote(srv.URL, "/exams", nil, nil)
	err := s.Delete(context.Background(), 5)
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusNotFound {
		t.Errorf("expected HTTPError 404, got %v", err)
	}
	if seen[0].Method != http.MethodDelete || seen[0].Path != "/exams/5" {
		t.Errorf("unexpected request %s %s", seen[0].Method, seen[0].Path)
	}
}

func TestRemote_ServerError(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusInternalServerError, `boom`, &seen)

	s := NewRemote(srv.URL, "/reminders", nil, nil)
	_, err := s.List(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Status != 500 || httpErr.Body != "boom" {
		t.Errorf("unexpected error fields: %+v", httpErr)
	}
	if errors.Is(err, resource.ErrNotFound) {
		t.Error("500 must not map to ErrNotFound")
	}
}

type failingToken struct{}

func (failingToken) Token(context.Context) (string, error) { return "", errors.New("expired") }

func TestRemote_TokenErrorStopsRequest(t *testing.T) {
	var seen []recordedRequest
	srv := newBackend(t, http.StatusOK, `[]`, &seen)

	s := NewRemote(srv.URL, "/patients", failingToken{}, nil)
	if _, err := s.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(seen) != 0 {
		t.Errorf("expected no request to reach the backend, got %d", len(seen))
	}
}
