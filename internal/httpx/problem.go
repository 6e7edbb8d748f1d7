package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AngelCh415/metaads-dashboard/internal/export"
	"github.com/AngelCh415/metaads-dashboard/internal/ingest"
	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/store"
	"github.com/AngelCh415/metaads-dashboard/internal/utils"
)

var problemTypes = map[int]string{
	http.StatusBadRequest:            "/errors/validation",
	http.StatusNotFound:              "/errors/not-found",
	http.StatusRequestEntityTooLarge: "/errors/too-large",
	http.StatusBadGateway:            "/errors/upstream",
	http.StatusInternalServerError:   "/errors/internal",
}

// statusOf maps known errors to a status, or returns fallback.
func statusOf(err error, fallback int) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, metrics.ErrInvalidQuery),
		errors.Is(err, metrics.ErrUnknownDimension),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, store.ErrSampleReadOnly),
		errors.Is(err, ingest.ErrSourceNotConfigured),
		errors.Is(err, ingest.ErrSinkNotConfigured):
		return http.StatusBadRequest
	}
	return fallback
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback int) {
	status := statusOf(err, fallback)
	p := utils.Problem{
		Type:   problemTypes[status],
		Status: status,
		Detail: err.Error(),
		Trace:  utils.RID(r.Context()),
	}
	lvl := slog.LevelWarn
	if status >= 500 {
		lvl = slog.LevelError
	}
	log.Log(r.Context(), lvl, "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("rid", p.Trace),
		slog.String("err", err.Error()))
	utils.WriteProblem(w, r, p)
}
