package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/setlist/api/middleware"
	"github.com/use-agent/setlist/config"
	"github.com/use-agent/setlist/models"
)

type fakeParser struct {
	result  *models.Playlist
	entered chan struct{}
	release chan struct{}
}

func (f *fakeParser) Parse(ctx context.Context, url string) *models.Playlist {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.result == nil {
		return models.NewFallbackPlaylist(url, errors.New("nothing configured"))
	}
	return f.result
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Auth.Enabled = false
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 1000
	return cfg
}

func postPlaylist(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) models.ParseResponse {
	t.Helper()
	var resp models.ParseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return resp
}

func TestParse_Success(t *testing.T) {
	p := &fakeParser{result: &models.Playlist{
		Name:   "My Mix",
		Tracks: []models.Track{{Title: "Song A", Artist: "DJ", Album: "My Mix", Duration: "3:10"}},
	}}
	r := NewRouter(p, middleware.NewGuard(), testConfig(), time.Now())

	w := postPlaylist(t, r, `{"url":"https://music.example.com/playlists/1"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if !resp.Success || resp.Playlist == nil || resp.Playlist.Tracks[0].Title != "Song A" {
		t.Errorf("response = %+v", resp)
	}
}

func TestParse_FallbackIsNotSuccess(t *testing.T) {
	r := NewRouter(&fakeParser{}, middleware.NewGuard(), testConfig(), time.Now())

	w := postPlaylist(t, r, `{"url":"not a url"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode(t, w)
	if resp.Success {
		t.Error("fallback playlist reported as success")
	}
	if resp.Playlist == nil || resp.Playlist.Name != models.FallbackName || resp.Playlist.CoverURL != "not a url" {
		t.Errorf("playlist = %+v", resp.Playlist)
	}
}

func TestParse_MissingURL(t *testing.T) {
	r := NewRouter(&fakeParser{}, middleware.NewGuard(), testConfig(), time.Now())

	w := postPlaylist(t, r, `{}`, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decode(t, w); resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestParse_BusyWhileInFlight(t *testing.T) {
	p := &fakeParser{
		result:  &models.Playlist{Name: "Slow", Tracks: []models.Track{}},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	guard := middleware.NewGuard()
	r := NewRouter(p, guard, testConfig(), time.Now())

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- postPlaylist(t, r, `{"url":"https://music.example.com/playlists/slow"}`, nil)
	}()
	<-p.entered

	second := postPlaylist(t, r, `{"url":"https://music.example.com/playlists/other"}`, nil)
	if second.Code != http.StatusConflict {
		t.Errorf("second request status = %d, want 409", second.Code)
	}
	if resp := decode(t, second); resp.Error == nil || resp.Error.Code != models.ErrCodeBusy {
		t.Errorf("second request error = %+v", resp.Error)
	}

	health := httptest.NewRecorder()
	r.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	var hr models.HealthResponse
	if err := json.Unmarshal(health.Body.Bytes(), &hr); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if hr.Status != "busy" {
		t.Errorf("health status = %q while running, want busy", hr.Status)
	}

	close(p.release)
	if first := <-done; first.Code != http.StatusOK {
		t.Errorf("first request status = %d", first.Code)
	}
	if guard.Busy() {
		t.Error("guard still busy after the request finished")
	}
}

func TestHealth_Idle(t *testing.T) {
	r := NewRouter(&fakeParser{}, middleware.NewGuard(), testConfig(), time.Now())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var hr models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &hr); err != nil {
		t.Fatal(err)
	}
	if hr.Status != "idle" || hr.Version == "" {
		t.Errorf("health = %+v", hr)
	}
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"secret"}
	r := NewRouter(&fakeParser{}, middleware.NewGuard(), cfg, time.Now())
	body := `{"url":"https://music.example.com/playlists/1"}`

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postPlaylist(t, r, body, tt.headers); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.RequestsPerSecond = 0.001
	cfg.RateLimit.Burst = 1
	r := NewRouter(&fakeParser{}, middleware.NewGuard(), cfg, time.Now())
	body := `{"url":"https://music.example.com/playlists/1"}`

	if w := postPlaylist(t, r, body, nil); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := postPlaylist(t, r, body, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if resp := decode(t, w); resp.Error == nil || resp.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("error = %+v", resp.Error)
	}
}
