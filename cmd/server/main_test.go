package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mapcrown/mapcrown/internal/platform/config"
)

const rivers = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"name":"Ganga"},"geometry":{"type":"LineString","coordinates":[[78,30],[88,22]]}}
]}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rivers.min.json"), []byte(rivers), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAPCROWN_DATA_SOURCE", "file")
	t.Setenv("MAPCROWN_DATA_DIR", dir)
	t.Setenv("MAPCROWN_CACHE_URL", "")
	t.Setenv("MAPCROWN_ANALYTICS_SINK", "memory")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return cfg
}

func TestHealthEndpoints(t *testing.T) {
	svc, err := build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer svc.Close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   "{\"status\":\"ok\"}\n",
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   "{\"status\":\"ready\"}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			svc.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestBuild_ServesConfiguredDataset(t *testing.T) {
	svc, err := build(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer svc.Close()

	rec := httptest.NewRecorder()
	svc.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layers/rivers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var layer struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&layer); err != nil {
		t.Fatal(err)
	}
	if len(layer.Items) != 1 || layer.Items[0].Name != "Ganga" {
		t.Errorf("layer = %+v", layer)
	}

	rec = httptest.NewRecorder()
	svc.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/layers/mountains", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("missing dataset status = %d, want 503", rec.Code)
	}
}

func TestBuild_BadTriviaPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Quiz.TriviaPath = filepath.Join(t.TempDir(), "missing")
	if _, err := build(context.Background(), cfg); err == nil {
		t.Error("build() should fail for a missing trivia directory")
	}
}
