package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"artreview/internal/config"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T, kodiURL string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("FANARTTV_API_KEY", "")
	t.Setenv("KODI_PASSWORD", "")

	if kodiURL == "" {
		kodiURL = "http://127.0.0.1:1/jsonrpc"
	}
	configPath := filepath.Join(base, "artreview.toml")
	writeTestConfig(t, configPath, base, kodiURL)
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func writeTestConfig(t *testing.T, path, base, kodiURL string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q
cache_dir = %q

[kodi]
url = %q
timeout_seconds = 5

[artwork]
preferred_language = "en"
movie_types = ["poster", "fanart"]

[cache]
enabled = false
`,
		filepath.Join(base, "state"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "cache"),
		kodiURL,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, _, _, err := config.Load(e.configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return cfg
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// fakeKodi answers the JSON-RPC calls a movie review makes.
type fakeKodi struct {
	mu     sync.Mutex
	movies []map[string]any
	calls  []string
}

func newFakeKodi(t *testing.T, movies ...map[string]any) (*fakeKodi, *httptest.Server) {
	t.Helper()
	fk := &fakeKodi{movies: movies}
	server := httptest.NewServer(http.HandlerFunc(fk.serve))
	t.Cleanup(server.Close)
	return fk, server
}

func (f *fakeKodi) serve(w http.ResponseWriter, r *http.Request) {
	var call struct {
		Method string         `json:"method"`
		Params map[string]any `json:"params"`
		ID     int64          `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, call.Method)
	var result any
	switch call.Method {
	case "JSONRPC.Ping":
		result = "pong"
	case "VideoLibrary.GetMovies":
		result = map[string]any{"movies": f.movies}
	case "VideoLibrary.GetMovieDetails":
		id, _ := call.Params["movieid"].(float64)
		for _, m := range f.movies {
			if m["movieid"] == int(id) {
				result = map[string]any{"moviedetails": m}
			}
		}
	case "VideoLibrary.SetMovieDetails":
		result = "OK"
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": call.ID, "result": result})
}

func (f *fakeKodi) called(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}
