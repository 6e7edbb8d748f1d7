package httpx

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/AngelCh415/metaads-dashboard/internal/config"
	"github.com/AngelCh415/metaads-dashboard/internal/export"
	"github.com/AngelCh415/metaads-dashboard/internal/ingest"
	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/models"
	"github.com/AngelCh415/metaads-dashboard/internal/store"
	"github.com/AngelCh415/metaads-dashboard/internal/utils"
)

// multipart overhead allowed on top of the file itself
const formSlack = 1 << 20

type handlers struct {
	log    *slog.Logger
	cfg    config.Config
	st     *store.MemoryStore
	loader *ingest.Loader
	svc    *metrics.Service
	tel    *telemetry
}

type uploadResponse struct {
	Dataset  models.DatasetMeta `json:"dataset"`
	Warning  string             `json:"warning,omitempty"`
	Fallback bool               `json:"fallback"`
	Reused   bool               `json:"reused"`
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.st.Get(models.SampleDatasetID); err != nil {
		utils.WriteProblem(w, r, utils.Problem{Title: "not ready", Status: http.StatusServiceUnavailable, Detail: err.Error()})
		return
	}
	w.WriteHeader(200)
	w.Write([]byte("ready"))
}

// upload reads multipart field "file". Files that cannot be parsed still
// answer 200 with the sample dataset and a warning.
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+formSlack)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.tel.uploads.WithLabelValues("rejected").Inc()
		writeError(w, r, h.log, fmt.Errorf("multipart field \"file\": %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		h.tel.uploads.WithLabelValues("rejected").Inc()
		writeError(w, r, h.log, err, http.StatusBadRequest)
		return
	}
	if int64(len(body)) > h.cfg.MaxUploadBytes {
		h.tel.uploads.WithLabelValues("rejected").Inc()
		writeError(w, r, h.log, &http.MaxBytesError{Limit: h.cfg.MaxUploadBytes}, http.StatusRequestEntityTooLarge)
		return
	}

	res := h.loader.Upload(r.Context(), hdr.Filename, body)
	status := http.StatusCreated
	switch {
	case res.Fallback:
		h.tel.uploads.WithLabelValues("fallback").Inc()
		status = http.StatusOK
	case res.Reused:
		h.tel.uploads.WithLabelValues("reused").Inc()
		status = http.StatusOK
	default:
		h.tel.uploads.WithLabelValues("loaded").Inc()
	}
	render.Status(r, status)
	render.JSON(w, r, uploadResponse{
		Dataset:  res.Dataset.Meta(),
		Warning:  res.Warning,
		Fallback: res.Fallback,
		Reused:   res.Reused,
	})
}

func (h *handlers) listDatasets(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.st.List())
}

func (h *handlers) getDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.st.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err, http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, ds.Meta())
}

func (h *handlers) deleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.st.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err, http.StatusInternalServerError)
		return
	}
	render.NoContent(w, r)
}

func (h *handlers) ingestRun(w http.ResponseWriter, r *http.Request) {
	res, err := h.loader.Run(r.Context())
	if err != nil {
		writeError(w, r, h.log, err, http.StatusBadGateway)
		return
	}
	render.JSON(w, r, uploadResponse{Dataset: res.Dataset.Meta(), Reused: res.Reused})
}

// respond writes v as JSON, or the error as a problem.
func respond[T any](h *handlers, w http.ResponseWriter, r *http.Request, v T, err error) {
	if err != nil {
		writeError(w, r, h.log, err, http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, v)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.URL.Query())
	respond(h, w, r, d, err)
}

func (h *handlers) options(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Options(r.URL.Query())
	respond(h, w, r, o, err)
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.URL.Query())
	respond(h, w, r, s, err)
}

func (h *handlers) daily(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Daily(r.URL.Query())
	respond(h, w, r, d, err)
}

func (h *handlers) funnel(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Funnel(r.URL.Query())
	respond(h, w, r, f, err)
}

func (h *handlers) weekday(w http.ResponseWriter, r *http.Request) {
	wd, err := h.svc.Weekday(r.URL.Query())
	respond(h, w, r, wd, err)
}

func (h *handlers) breakdown(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Breakdown(r.URL.Query(), chi.URLParam(r, "dimension"))
	respond(h, w, r, p, err)
}

// download renders the filtered records as an attachment.
func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, h.log, err, http.StatusBadRequest)
		return
	}
	vw, err := h.svc.View(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, f, export.NewInput(vw, time.Now())); err != nil {
		writeError(w, r, h.log, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.FileName(export.DefaultName)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *handlers) exportRun(w http.ResponseWriter, r *http.Request) {
	q, err := metrics.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err, http.StatusBadRequest)
		return
	}
	f, err := q.Filter()
	if err != nil {
		writeError(w, r, h.log, err, http.StatusBadRequest)
		return
	}
	n, err := h.loader.ExportSummary(r.Context(), q.Dataset, f)
	if err != nil {
		writeError(w, r, h.log, err, http.StatusBadGateway)
		return
	}
	render.JSON(w, r, map[string]any{"dataset": q.Dataset, "exported": n})
}
