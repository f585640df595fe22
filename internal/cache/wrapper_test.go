package cache_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/cache"
)

func TestWrap_ServesFromCacheOnRepeat(t *testing.T) {
	m, _ := newTestManager(t)

	calls := 0
	handler := m.Wrap(cache.WrapOptions{
		Namespace:       cache.NamespaceTransaction,
		Prefix:          "single",
		IdentifierParam: "id",
	}, func(w http.ResponseWriter, r *http.Request) {
		calls++

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": chi.URLParam(r, "id")})
	})

	router := chi.NewRouter()
	router.Get("/transactions/{id}", handler)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/transactions/42", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, first.Header().Get("X-Cache"))

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/transactions/42", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, calls, "second request must be served from cache")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// A different identifier is a different key.
	third := httptest.NewRecorder()
	router.ServeHTTP(third, httptest.NewRequest(http.MethodGet, "/transactions/7", nil))
	assert.Equal(t, 2, calls)
}

func TestWrap_QueryParamsPartitionTheKey(t *testing.T) {
	m, _ := newTestManager(t)

	calls := 0
	handler := m.Wrap(cache.WrapOptions{
		Namespace:     cache.NamespaceTransaction,
		Prefix:        "list",
		IncludeParams: []string{"skip", "limit"},
	}, func(w http.ResponseWriter, r *http.Request) {
		calls++

		json.NewEncoder(w).Encode([]int{1, 2, 3})
	})

	router := chi.NewRouter()
	router.Get("/transactions", handler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/transactions?limit=20", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/transactions?limit=20", nil))
	assert.Equal(t, 1, calls)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/transactions?limit=50", nil))
	assert.Equal(t, 2, calls)
}

func TestWrap_ErrorResponsesNotCached(t *testing.T) {
	m, _ := newTestManager(t)

	calls := 0
	handler := m.Wrap(cache.WrapOptions{
		Namespace: cache.NamespaceTransaction,
		Prefix:    "list",
	}, func(w http.ResponseWriter, r *http.Request) {
		calls++

		http.Error(w, "boom", http.StatusInternalServerError)
	})

	router := chi.NewRouter()
	router.Get("/transactions", handler)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}

	assert.Equal(t, 2, calls, "error responses must never be cached")
}

func TestWrap_InvalidationClearsEntry(t *testing.T) {
	m, _ := newTestManager(t)

	calls := 0
	handler := m.Wrap(cache.WrapOptions{
		Namespace:       cache.NamespaceAnalytics,
		Prefix:          "user",
		IdentifierParam: "userID",
		TTL:             5 * time.Minute,
	}, func(w http.ResponseWriter, r *http.Request) {
		calls++

		json.NewEncoder(w).Encode(map[string]int{"total": calls})
	})

	router := chi.NewRouter()
	router.Get("/analytics/{userID}", handler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/analytics/7", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/analytics/7", nil))
	require.Equal(t, 1, calls)

	m.Invalidate(context.Background(), cache.NamespaceAnalytics, "7")

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/analytics/7", nil))
	assert.Equal(t, 2, calls)
}
