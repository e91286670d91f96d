package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/extman/internal/controller"
	"github.com/five82/extman/internal/gateway"
	"github.com/five82/extman/internal/state"
)

type fakeStore struct {
	mu        sync.Mutex
	items     []gateway.Extension
	patches   []string
	fail      bool
	userAgent string
	// hang, when set, holds PATCH requests until the client gives up and
	// reports each one on the channel.
	hang chan string
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /extensions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.userAgent = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(f.items)
	})
	mux.HandleFunc("PATCH /extensions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.hang != nil {
			f.hang <- r.PathValue("id")
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.patches = append(f.patches, r.PathValue("id"))
		if f.fail {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	return mux
}

func writeConfig(t *testing.T, apiURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "api_url = \"" + apiURL + "\"\nrequest_timeout = \"2s\"\nlog_level = \"debug\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewSession_WiresConfigIntoGateway(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTMAN_API_URL", "")

	remote := &fakeStore{items: []gateway.Extension{
		{ID: 1, Name: "DevLens", IsActive: true},
		{ID: 2, Name: "StyleSpy", IsActive: false},
	}}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	var logs bytes.Buffer
	session, err := NewSession(context.Background(), Options{
		ConfigPath: writeConfig(t, srv.URL),
		LogWriter:  &logs,
	})
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, srv.URL, session.Config.APIURL)
	assert.Equal(t, 2*time.Second, session.Config.RequestTimeout)
	assert.Equal(t, "Dark", session.Prefs.Theme)

	require.NoError(t, session.Controller.Load(context.Background()))
	assert.Equal(t, state.Loaded, session.Store.Status())
	assert.Equal(t, 2, session.Store.Len())
	assert.Contains(t, logs.String(), "extensions loaded")
}

func TestNewSession_ToggleRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTMAN_API_URL", "")

	remote := &fakeStore{items: []gateway.Extension{{ID: 7, Name: "Grid", IsActive: false}}}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	var outcomes []controller.Outcome
	var mu sync.Mutex
	session, err := NewSession(context.Background(), Options{
		ConfigPath: writeConfig(t, srv.URL),
		LogWriter:  &bytes.Buffer{},
		Notify: func(o controller.Outcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer session.Close()
	require.NoError(t, session.Controller.Load(context.Background()))

	m, err := session.Controller.OnToggle(7, true)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx))

	ext, err := session.Store.Get(7)
	require.NoError(t, err)
	assert.True(t, ext.IsActive)
	assert.Equal(t, []string{"7"}, remote.patches)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 1)
	assert.Equal(t, controller.PhaseConfirmed, outcomes[0].Phase)
}

func TestNewSession_RejectedToggleRollsBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTMAN_API_URL", "")

	remote := &fakeStore{items: []gateway.Extension{{ID: 7, Name: "Grid", IsActive: false}}, fail: true}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	session, err := NewSession(context.Background(), Options{
		ConfigPath: writeConfig(t, srv.URL),
		LogWriter:  &bytes.Buffer{},
	})
	require.NoError(t, err)
	defer session.Close()
	require.NoError(t, session.Controller.Load(context.Background()))

	m, err := session.Controller.OnToggle(7, true)
	require.NoError(t, err)
	err = m.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsRejected(err))

	ext, err := session.Store.Get(7)
	require.NoError(t, err)
	assert.False(t, ext.IsActive)
}

func TestNewSession_SendsVersionedUserAgent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTMAN_API_URL", "")

	remote := &fakeStore{}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	session, err := NewSession(context.Background(), Options{
		ConfigPath: writeConfig(t, srv.URL),
		LogWriter:  &bytes.Buffer{},
		Version:    "1.4.0",
	})
	require.NoError(t, err)
	defer session.Close()
	require.NoError(t, session.Controller.Load(context.Background()))

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, "extman/1.4.0", remote.userAgent)
}

func TestSession_CloseRollsBackBeforeClosingLog(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTMAN_API_URL", "")

	remote := &fakeStore{
		items: []gateway.Extension{{ID: 7, Name: "Grid", IsActive: false}},
		hang:  make(chan string, 1),
	}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	logFile := filepath.Join(t.TempDir(), "extman.log")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	body := "api_url = \"" + srv.URL + "\"\nlog_file = \"" + logFile + "\"\nlog_level = \"debug\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	session, err := NewSession(context.Background(), Options{ConfigPath: cfgPath, LogToFile: true})
	require.NoError(t, err)
	require.NoError(t, session.Controller.Load(context.Background()))

	m, err := session.Controller.OnToggle(7, true)
	require.NoError(t, err)
	select {
	case id := <-remote.hang:
		assert.Equal(t, "7", id)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the PATCH to arrive")
	}

	require.NoError(t, session.Close())
	require.NoError(t, session.Close(), "second Close is a no-op")

	assert.Error(t, m.Err())
	assert.Zero(t, session.Controller.Pending())
	ext, err := session.Store.Get(7)
	require.NoError(t, err)
	assert.False(t, ext.IsActive)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "remote call failed, rolled back")
}

func TestNewSession_LogToFileUsesConfiguredPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTMAN_API_URL", "")

	logFile := filepath.Join(t.TempDir(), "logs", "extman.log")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_file = \""+logFile+"\"\nlog_level = \"debug\"\n"), 0o600))

	session, err := NewSession(context.Background(), Options{ConfigPath: cfgPath, LogToFile: true})
	require.NoError(t, err)
	require.NoError(t, session.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session ready")
}

func TestNewSession_InvalidConfigFails(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api_url = ["), 0o600))

	_, err := NewSession(context.Background(), Options{ConfigPath: cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestNewSession_BadAPIURLFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXTMAN_API_URL", "://nope")

	_, err := NewSession(context.Background(), Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		LogWriter:  &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init gateway client")
}
