package cache

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// WrapOptions controls how a cached read endpoint derives its key.
type WrapOptions struct {
	Namespace       Namespace
	Prefix          string
	TTL             time.Duration // zero means the manager's default
	IdentifierParam string        // chi URL parameter used as the key identifier
	IncludeParams   []string      // query parameters folded into the key
}

// Wrap serves the handler's JSON response from the cache when a previous call
// stored it. On a miss the wrapped handler runs and its response is cached,
// unless it reported an error status. A cache failure in either direction
// passes straight through to the handler.
func (m *Manager) Wrap(opts WrapOptions, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var identifier string
		if opts.IdentifierParam != "" {
			identifier = chi.URLParam(r, opts.IdentifierParam)
		}

		params := make(map[string]string, len(opts.IncludeParams))
		for _, p := range opts.IncludeParams {
			params[p] = r.URL.Query().Get(p)
		}

		key := Key(opts.Namespace, opts.Prefix, identifier, params)

		var cached json.RawMessage
		if m.Get(r.Context(), key, &cached) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.Write(cached)

			return
		}

		rec := &responseRecorder{header: make(http.Header)}
		next(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		for name, values := range rec.header {
			for _, v := range values {
				w.Header().Add(name, v)
			}
		}

		w.WriteHeader(rec.status)
		w.Write(rec.body)

		if rec.status < http.StatusBadRequest && len(rec.body) > 0 {
			m.Set(r.Context(), key, json.RawMessage(rec.body), opts.TTL)
		}
	}
}

// responseRecorder buffers the wrapped handler's response so it can be both
// replayed to the client and stored.
type responseRecorder struct {
	header http.Header
	body   []byte
	status int
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}

	r.body = append(r.body, b...)

	return len(b), nil
}
