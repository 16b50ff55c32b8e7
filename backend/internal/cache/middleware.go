package cache

import (
	"bytes"
	"net/http"

	"github.com/threadly-dev/threadly/shared/logger"
	"github.com/threadly-dev/threadly/shared/middleware/metrics"
)

// recorder tees the response body so a 200 can be stored after it is sent.
type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware serves GET requests from store and fills it on a miss.
// Only 200 responses are cached. Cache failures fall through to next.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			path, variant := CanonicalPath(r.URL.Path), r.URL.RawQuery

			body, ok, err := store.Get(r.Context(), path, variant)
			if err != nil {
				metrics.ViewCache.WithLabelValues("error").Inc()
				logger.Log.Warn("view cache read failed", "path", path, "error", err)
			}
			if ok {
				metrics.ViewCache.WithLabelValues("hit").Inc()
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				_, _ = w.Write(body)
				return
			}
			metrics.ViewCache.WithLabelValues("miss").Inc()

			w.Header().Set("X-Cache", "MISS")
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status != http.StatusOK {
				return
			}
			if err := store.Set(r.Context(), path, variant, rec.buf.Bytes()); err != nil {
				logger.Log.Warn("view cache write failed", "path", path, "error", err)
			}
		})
	}
}
