package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// TokenSource yields the bearer credential attached to every remote call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// HTTPError is a non-2xx answer from the REST backend.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap maps 404 answers to resource.ErrNotFound.
func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return resource.ErrNotFound
	}
	return nil
}

// Remote talks to the REST backend for one resource collection, e.g.
// {baseURL}/patients. It never retries; last write wins on the server.
type Remote struct {
	baseURL string
	path    string
	tokens  TokenSource
	client  *http.Client
}

// NewRemote builds a remote store. A nil client gets a 10 second timeout.
func NewRemote(baseURL, path string, tokens TokenSource, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    "/" + strings.Trim(path, "/"),
		tokens:  tokens,
		client:  client,
	}
}

func (s *Remote) collectionURL() string {
	return s.baseURL + s.path
}

func (s *Remote) itemURL(id int64) string {
	return s.collectionURL() + "/" + strconv.FormatInt(id, 10)
}

func (s *Remote) List(ctx context.Context) ([]resource.Record, error) {
	var out []resource.Record
	if err := s.do(ctx, http.MethodGet, s.collectionURL(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []resource.Record{}
	}
	return out, nil
}

func (s *Remote) Create(ctx context.Context, r resource.Record) (resource.Record, error) {
	var out resource.Record
	if err := s.do(ctx, http.MethodPost, s.collectionURL(), r.Fields, &out); err != nil {
		return resource.Record{}, err
	}
	if out.ID == 0 {
		return resource.Record{}, errors.New("backend did not assign an id")
	}
	return out, nil
}

func (s *Remote) Update(ctx context.Context, r resource.Record) (resource.Record, error) {
	out := r.Clone()
	if err := s.do(ctx, http.MethodPut, s.itemURL(r.ID), r, &out); err != nil {
		return resource.Record{}, err
	}
	out.ID = r.ID
	return out, nil
}

func (s *Remote) Patch(ctx context.Context, id int64, fields map[string]any) (resource.Record, error) {
	var out resource.Record
	if err := s.do(ctx, http.MethodPatch, s.itemURL(id), fields, &out); err != nil {
		return resource.Record{}, err
	}
	if out.Fields == nil {
		// 204 from the backend: only the patched fields are known.
		out = resource.NewRecord(id, fields)
	}
	out.ID = id
	return out, nil
}

func (s *Remote) Delete(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodDelete, s.itemURL(id), nil, nil)
}

func (s *Remote) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.tokens != nil {
		token, err := s.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("resolve credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			Method: method,
			URL:    url,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(payload)),
		}
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, url, err)
	}
	return nil
}
