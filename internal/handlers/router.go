package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures the operational router.
type RouterOptions struct {
	// Ready reports whether dependencies (the store) are reachable.
	// Nil means always ready.
	Ready func(r *http.Request) error
}

// Router builds the ops-only HTTP surface: liveness, readiness, metrics.
// The engine itself exposes no API; this exists for the platform's probes
// and scrapers.
func Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(req); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	return r
}
