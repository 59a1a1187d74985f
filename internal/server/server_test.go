package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDB struct {
	health map[string]string
	closed bool
}

func (f *fakeDB) DB() *sql.DB                { return nil }
func (f *fakeDB) Health() map[string]string { return f.health }
func (f *fakeDB) Close() error              { f.closed = true; return nil }

func testConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Port: "0", Env: "development"},
		Pagination: config.PaginationConfig{DefaultSize: 20, MaxSize: 100},
	}
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		health map[string]string
		want   int
	}{
		{"up", map[string]string{"status": "up"}, http.StatusOK},
		{"down", map[string]string{"status": "down", "error": "refused"}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := NewRouter(testConfig(), zap.NewNop(), &fakeDB{health: tc.health})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.want, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.health["status"], body["status"])
		})
	}
}

func TestRoutesAreRegistered(t *testing.T) {
	router := NewRouter(testConfig(), zap.NewNop(), &fakeDB{health: map[string]string{"status": "up"}})

	for _, path := range []string{"/api/customers", "/api/customers/bulk", "/api/products", "/api/orders"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/customers", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(testConfig(), zap.NewNop(), &fakeDB{health: map[string]string{"status": "up"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCloseReleasesDatabase(t *testing.T) {
	db := &fakeDB{health: map[string]string{"status": "up"}}
	srv := NewServer(testConfig(), zap.NewNop(), db)

	require.NoError(t, srv.Close())
	assert.True(t, db.closed)
}
