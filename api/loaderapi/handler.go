// Package loaderapi exposes a read-mostly HTTP view of a running loader.
package loaderapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/classloader/core/class"
	"github.com/kilianp07/classloader/core/loader"
	"github.com/kilianp07/classloader/core/registry"
	"github.com/kilianp07/classloader/infra/logger"
	"github.com/kilianp07/classloader/pkg/export"
)

// Inspector is the loader surface the handler reads.
type Inspector interface {
	Entries() []registry.Entry
	Resolve(name string, namespace *string) (*class.Class, error)
	CachedClasses() []string
	InvalidateCache() bool
}

// Resolution is the JSON form of a resolved class.
type Resolution struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Base string `json:"base,omitempty"`
}

// NewHandler returns an HTTP handler serving:
//
//	GET  /api/loader/modules           registry entries in search order
//	GET  /api/loader/resolve?name=...  resolve a class, optional namespace=
//	GET  /api/loader/cache             cached class keys
//	POST /api/loader/cache/invalidate  clear the caches
//
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty.
func NewHandler(in Inspector, token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/loader/modules", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, export.Entries(in.Entries()))
	})
	mux.HandleFunc("GET /api/loader/resolve", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		name := q.Get("name")
		if name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		var ns *string
		if q.Has("namespace") {
			v := q.Get("namespace")
			ns = &v
		}
		k, err := in.Resolve(name, ns)
		switch {
		case err == nil:
		case errors.Is(err, loader.ErrClassNotFound), errors.Is(err, loader.ErrNotRegistered):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		res := Resolution{Name: k.Name(), Type: k.Type().String()}
		if b := k.Base(); b != nil {
			res.Base = b.Name()
		}
		writeJSON(w, http.StatusOK, res)
	})
	mux.HandleFunc("GET /api/loader/cache", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, in.CachedClasses())
	})
	mux.HandleFunc("POST /api/loader/cache/invalidate", func(w http.ResponseWriter, _ *http.Request) {
		if !in.InvalidateCache() {
			http.Error(w, "loader is not cached", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs h on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	log := logger.New("loader-api")
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving loader api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
