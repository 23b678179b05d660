package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ScottDudley1/demo-dashboard/internal/daterange"
	"github.com/ScottDudley1/demo-dashboard/internal/dataset"
	"github.com/ScottDudley1/demo-dashboard/internal/ingest"
	"github.com/ScottDudley1/demo-dashboard/internal/metrics"
	"github.com/ScottDudley1/demo-dashboard/internal/store"
	"github.com/ScottDudley1/demo-dashboard/internal/telemetry"
	"github.com/ScottDudley1/demo-dashboard/internal/utils"
)

type Deps struct {
	Log     *slog.Logger
	Loader  *ingest.Loader
	Service *metrics.Service
	Store   *store.MemoryStore
	Metrics *telemetry.Metrics
	Clock   daterange.Clock
}

func NewRouter(d Deps) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(utils.Instrument(d.Metrics))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		for _, name := range d.Loader.Datasets() {
			if !d.Store.Loaded(name) {
				http.Error(w, "dataset not loaded: "+name, http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	mux.Get("/presets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, daterange.Presets(d.Clock.Now()))
	})

	mux.Get("/datasets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Store.All())
	})

	mux.Route("/datasets/{name}", func(r chi.Router) {
		r.Post("/load", func(w http.ResponseWriter, r *http.Request) {
			stats, err := d.Loader.Load(r.Context(), chi.URLParam(r, "name"))
			if err != nil {
				fail(w, d.Log, err)
				return
			}
			writeJSON(w, stats)
		})

		r.Get("/options", handle(d.Log, d.Service.Options))
		r.Get("/scorecards", handle(d.Log, d.Service.Scorecards))
		r.Get("/series", handle(d.Log, d.Service.Series))
		r.Get("/breakdown", handle(d.Log, d.Service.Breakdown))
		r.Get("/daily", handle(d.Log, d.Service.Daily))
		r.Get("/groups", handle(d.Log, d.Service.Groups))
		r.Get("/source-medium", handle(d.Log, d.Service.SourceMedium))
		r.Get("/geo", handle(d.Log, d.Service.Geo))
	})

	return mux
}

// handle adapts a dataset query to a handler.
func handle[T any](log *slog.Logger, q func(string, url.Values) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := q(chi.URLParam(r, "name"), r.URL.Query())
		if err != nil {
			fail(w, log, err)
			return
		}
		writeJSON(w, res)
	}
}

func fail(w http.ResponseWriter, log *slog.Logger, err error) {
	var pe *ingest.ParseError
	switch {
	case errors.Is(err, dataset.ErrUnknownDataset):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrNotLoaded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, metrics.ErrBadQuery):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &pe):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Error("request failed", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
