package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AngelCh415/metaads-dashboard/internal/config"
	"github.com/AngelCh415/metaads-dashboard/internal/ingest"
	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/store"
	"github.com/AngelCh415/metaads-dashboard/internal/utils"
)

func NewRouter(log *slog.Logger, cfg config.Config, st *store.MemoryStore, loader *ingest.Loader, mSvc *metrics.Service) http.Handler {
	tel := newTelemetry(st)
	h := &handlers{log: log, cfg: cfg, st: st, loader: loader, svc: mSvc, tel: tel}

	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(utils.Recoverer(log))
	mux.Use(tel.middleware)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", h.ready)

	mux.Route("/datasets", func(r chi.Router) {
		r.With(utils.RateLimit(cfg.UploadRPS, cfg.UploadBurst, log)).Post("/", h.upload)
		r.Get("/", h.listDatasets)
		r.Get("/{id}", h.getDataset)
		r.Delete("/{id}", h.deleteDataset)
	})

	mux.Post("/ingest/run", h.ingestRun)

	mux.Get("/dashboard", h.dashboard)
	mux.Get("/filters/options", h.options)
	mux.Route("/metrics", func(r chi.Router) {
		r.Method(http.MethodGet, "/", tel.handler())
		r.Get("/summary", h.summary)
		r.Get("/daily", h.daily)
		r.Get("/funnel", h.funnel)
		r.Get("/weekday", h.weekday)
		r.Get("/breakdown/{dimension}", h.breakdown)
	})

	mux.Get("/export", h.download)
	mux.Post("/export/run", h.exportRun)

	return mux
}
