package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

type sinkPayload struct {
	Dataset     string                 `json:"dataset"`
	GeneratedAt string                 `json:"generated_at"`
	From        string                 `json:"from,omitempty"`
	To          string                 `json:"to,omitempty"`
	Summary     metrics.Summary        `json:"summary"`
	Campaigns   []metrics.BreakdownRow `json:"campaigns"`
}

// Sign returns the hex HMAC-SHA256 of body under secret, as sent in
// X-Signature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ExportSummary posts the per-campaign breakdown of the filtered dataset to
// the sink and returns how many campaign rows were sent.
func (l *Loader) ExportSummary(ctx context.Context, datasetID string, f models.Filter) (int, error) {
	if !l.cfg.SinkConfigured() {
		return 0, ErrSinkNotConfigured
	}
	ds, err := l.st.Get(datasetID)
	if err != nil {
		return 0, err
	}
	recs := metrics.Apply(ds.Records, f)
	rows := metrics.Breakdown(recs, metrics.ByCampaign)
	if len(rows) == 0 {
		return 0, nil
	}

	p := sinkPayload{
		Dataset:     ds.ID,
		GeneratedAt: l.now().UTC().Format(time.RFC3339),
		Summary:     metrics.Summarize(recs),
		Campaigns:   rows,
	}
	if f.From != nil {
		p.From = f.From.Format(models.DateLayout)
	}
	if f.To != nil {
		p.To = f.To.Format(models.DateLayout)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.cfg.SinkURL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(l.cfg.SinkSecret, b))
	resp, err := l.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, &StatusError{Code: resp.StatusCode, Body: string(msg)}
	}
	return len(rows), nil
}
