// Package httpapi serves the matrix and cell assignment state to the
// opened windows over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/1broseidon/screenwall/internal/layout"
	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/store"
	"github.com/1broseidon/screenwall/internal/tiling"
)

// Source is the read side of the grid engine.
type Source interface {
	Matrices() []matrix.Matrix
	Matrix(id string) (matrix.Matrix, bool)
	CellMap() map[string]matrix.Cell
}

// Loader reads the persisted snapshot.
type Loader interface {
	Load(ctx context.Context) (store.Snapshot, error)
}

type api struct {
	src    Source
	loader Loader
	logger *slog.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(src Source, loader Loader, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &api{src: src, loader: loader, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/matrices", a.listMatrices)
		r.Get("/matrices/{id}", a.getMatrix)
		r.Get("/matrices/{id}/cells", a.matrixCells)
		r.Get("/cells", a.cells)
		r.Get("/store", a.snapshot)
		r.Get("/style", a.style)
	})
	return r
}

func (a *api) listMatrices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"matrices": a.src.Matrices()})
}

func (a *api) getMatrix(w http.ResponseWriter, r *http.Request) {
	m, ok := a.src.Matrix(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown matrix")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *api) matrixCells(w http.ResponseWriter, r *http.Request) {
	m, ok := a.src.Matrix(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown matrix")
		return
	}

	q := r.URL.Query()
	gap := 0
	if v := q.Get("gap"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "gap must be a non-negative integer")
			return
		}
		gap = n
	}
	origin := tiling.Absolute
	if fixing, _ := strconv.ParseBool(q.Get("fixing")); fixing {
		origin = tiling.Fixing
	}

	rects, err := tiling.CellRects(m, origin, gap)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if rects == nil {
		rects = []tiling.CellRect{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matrix_id": m.ID,
		"template":  m.Grid.Template.String(),
		"cells":     rects,
	})
}

func (a *api) cells(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.src.CellMap())
}

func (a *api) snapshot(w http.ResponseWriter, r *http.Request) {
	if a.loader == nil {
		writeJSON(w, http.StatusOK, store.Snapshot{})
		return
	}
	snap, err := a.loader.Load(r.Context())
	if err != nil {
		a.logger.Warn("failed to load snapshot", "error", err)
		writeError(w, http.StatusBadGateway, "failed to load snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *api) style(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, errW := strconv.ParseFloat(q.Get("width"), 64)
	height, errH := strconv.ParseFloat(q.Get("height"), 64)
	if errW != nil || errH != nil {
		writeError(w, http.StatusBadRequest, "width and height are required numbers")
		return
	}
	el := &layout.Box{Container: &layout.Box{Width: width, Height: height}}
	writeJSON(w, http.StatusOK, layout.ContentStyle(a.src.Matrices(), el))
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
