package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "127.0.0.1:3000" {
		t.Fatalf("default url = %q, want http://127.0.0.1:3000", u.String())
	}

	u, err = parseBaseURL("localhost:3000/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) returned nil error, want missing host")
	}
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	userAgent   string
	body        string
}

func newRecordingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			userAgent:   r.Header.Get("User-Agent"),
			body:        string(body),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestClient_RequestShapes(t *testing.T) {
	t.Parallel()

	server, requests := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/extensions":
			_ = json.NewEncoder(w).Encode([]Extension{
				{ID: 1, Name: "DevLens", IsActive: true},
				{ID: 2, Name: "StyleSpy"},
			})
		case r.Method == http.MethodPatch && r.URL.Path == "/extensions/2":
			_, _ = w.Write([]byte(`{"id":2,"name":"StyleSpy","isActive":true}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/extensions/1":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	})

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	items, err := c.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(items) != 2 || items[0].ID != 1 || !items[0].IsActive || items[1].Name != "StyleSpy" {
		t.Fatalf("FetchAll items = %#v, want DevLens then StyleSpy", items)
	}

	updated, err := c.UpdateStatus(ctx, 2, true)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.ID != 2 || !updated.IsActive {
		t.Fatalf("UpdateStatus = %#v, want id=2 active", updated)
	}

	if err := c.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}

	got := requests()
	if len(got) != 3 {
		t.Fatalf("server saw %d requests, want exactly 3", len(got))
	}
	patch := got[1]
	if patch.contentType != "application/json" {
		t.Fatalf("PATCH Content-Type = %q, want application/json", patch.contentType)
	}
	if patch.body != `{"isActive":true}` {
		t.Fatalf("PATCH body = %q, want {\"isActive\":true}", patch.body)
	}
	if got[2].method != http.MethodDelete || got[2].body != "" {
		t.Fatalf("DELETE request = %#v, want empty-body DELETE", got[2])
	}
	for _, r := range got {
		if !strings.HasPrefix(r.userAgent, "extman/") {
			t.Fatalf("User-Agent = %q, want extman/*", r.userAgent)
		}
	}
}

func TestClient_ResourceAndBasePath(t *testing.T) {
	t.Parallel()

	server, requests := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	c, err := NewClient(server.URL+"/api/", WithResource("/data/"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	items, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("FetchAll = %#v, want empty non-nil slice", items)
	}
	if got := requests()[0].path; got != "/api/data" {
		t.Fatalf("path = %q, want /api/data", got)
	}
}

func TestClient_NullListDecodesEmpty(t *testing.T) {
	t.Parallel()

	server, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	items, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if items == nil {
		t.Fatalf("FetchAll returned nil slice, want empty")
	}
}

func TestClient_RejectionAndDecodeErrors(t *testing.T) {
	t.Parallel()

	server, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte("{not-json"))
		case http.MethodPatch:
			http.Error(w, "nope", http.StatusInternalServerError)
		case http.MethodDelete:
			http.NotFound(w, r)
		}
	})
	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchAll(context.Background())
	if !IsTransport(err) || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchAll error = %v, want transport decode error", err)
	}

	_, err = c.UpdateStatus(context.Background(), 7, false)
	if !IsRejected(err) {
		t.Fatalf("UpdateStatus error = %v, want rejection", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.StatusCode != http.StatusInternalServerError || gerr.ID != 7 || gerr.Op != "update" {
		t.Fatalf("UpdateStatus error = %#v, want update id=7 status=500", gerr)
	}
	if !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("UpdateStatus error = %q, want it to mention status 500", err.Error())
	}

	err = c.Remove(context.Background(), 9)
	if !IsRejected(err) || IsTransport(err) {
		t.Fatalf("Remove error = %v, want rejection only", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(url, WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	err = c.Remove(context.Background(), 1)
	if !IsTransport(err) {
		t.Fatalf("Remove error = %v, want transport failure", err)
	}
	if !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("Remove error = %q, want it to mention execute request", err.Error())
	}
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	if _, err := c.FetchAll(context.Background()); err == nil {
		t.Fatalf("FetchAll on nil client returned nil error")
	}
	if err := c.Remove(context.Background(), 1); err == nil {
		t.Fatalf("Remove on nil client returned nil error")
	}
}
