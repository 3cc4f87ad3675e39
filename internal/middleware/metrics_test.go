package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method   string
	endpoint string
	status   int
}

type fakeHTTPRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeHTTPRecorder) RecordHTTPRequest(method, endpoint string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{method, endpoint, status})
}

func TestMetrics(t *testing.T) {
	rec := &fakeHTTPRecorder{}
	r := chi.NewRouter()
	r.Use(Metrics(rec, "/metrics"))
	r.Get("/balance", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	r.Post("/withdraw", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) })
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/balance", nil),
		httptest.NewRequest(http.MethodPost, "/withdraw", nil),
		httptest.NewRequest(http.MethodGet, "/users/42", nil),
		httptest.NewRequest(http.MethodGet, "/metrics", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, rec.obs, 3, "/metrics must not be recorded")
	assert.Equal(t, observation{http.MethodGet, "/balance", http.StatusOK}, rec.obs[0])
	assert.Equal(t, observation{http.MethodPost, "/withdraw", http.StatusBadRequest}, rec.obs[1])
	assert.Equal(t, observation{http.MethodGet, "/users/{id}", http.StatusOK}, rec.obs[2])
}
