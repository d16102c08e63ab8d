package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/maxkolot/telegram-subscription-bot/internal/cache"
	"github.com/maxkolot/telegram-subscription-bot/internal/db"
)

// NewHealthRouter exposes /healthz: a database ping plus a cache
// round-trip. Degraded-mode memory cache passes the round-trip, which is
// correct — the process is healthy, just non-durable on the fast tier.
func NewHealthRouter(store *db.Store, c cache.Cache) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}

		probe := fmt.Sprintf("healthz:%d", time.Now().UnixNano())
		if err := c.Set(ctx, probe, "ok", time.Minute); err != nil {
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
		if _, err := c.Get(ctx, probe); err != nil {
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = c.Del(ctx, probe)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	return r
}
