package utils

import (
	"net/http"

	"github.com/go-chi/render"
)

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements render.Renderer.
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// problemWriter stamps the problem media type when the status is written,
// after render has set its own content type.
type problemWriter struct{ http.ResponseWriter }

func (pw problemWriter) WriteHeader(code int) {
	pw.Header().Set("Content-Type", "application/problem+json")
	pw.ResponseWriter.WriteHeader(code)
}

// WriteProblem renders p as application/problem+json. An empty trace is
// filled from the request ID.
func WriteProblem(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	if p.Trace == "" {
		p.Trace = RID(r.Context())
	}
	if err := render.Render(problemWriter{w}, r, p); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
