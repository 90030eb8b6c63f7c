package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
)

// healthHandler reports that the watcher is alive.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// paletteHandler serves the current palette as JSON. ?all=true includes
// kinds hidden from the palette.
func (a *App) paletteHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	entries := a.Palette(r.Context(), r.URL.Query().Get("all") == "true")
	writeJSON(w, http.StatusOK, entries, logger)
}

// pinsHandler serves the pins a node of the kind in the path would get.
func (a *App) pinsHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	kind := chi.URLParam(r, "kind")

	entries, err := a.Pins(r.Context(), kind)
	switch {
	case errors.Is(err, ErrUnknownKind):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()}, logger)
	case err != nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()}, logger)
	default:
		writeJSON(w, http.StatusOK, entries, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response.", "error", err)
	}
}

func (a *App) statusRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", a.healthHandler)
	r.Get("/palette", a.paletteHandler)
	r.Get("/kinds/{kind}/pins", a.pinsHandler)
	return r
}

// startStatusServer starts the status server on port, 0 picking a free one,
// and returns the address it listens on.
func (a *App) startStatusServer(ctx context.Context, port int) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring status server.")

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("failed to listen for status server: %w", err)
	}

	srv := &http.Server{
		Handler:           a.statusRouter(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return a.ctx },
	}
	a.serverMu.Lock()
	a.httpServer = srv
	a.serverMu.Unlock()

	addr := ln.Addr().String()
	go func() {
		logger.Info("Status server starting.", "address", addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server failed unexpectedly.", "error", err)
		}
	}()
	return addr, nil
}

func (a *App) closeStatusServer() error {
	logger := ctxlog.FromContext(a.ctx)

	a.serverMu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.serverMu.Unlock()
	if srv == nil {
		logger.Debug("Status server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	logger.Info("Shutting down status server.")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Status server shutdown failed.", "error", err)
		return err
	}
	logger.Debug("Status server shut down gracefully.")
	return nil
}
