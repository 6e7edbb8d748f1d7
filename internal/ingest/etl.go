package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/AngelCh415/metaads-dashboard/internal/config"
	"github.com/AngelCh415/metaads-dashboard/internal/models"
	"github.com/AngelCh415/metaads-dashboard/internal/store"
	"github.com/AngelCh415/metaads-dashboard/internal/utils"
)

var ErrSourceNotConfigured = errors.New("data source not configured")

// Loader turns uploads and remote files into datasets held by the store.
type Loader struct {
	c      HTTPClient
	st     *store.MemoryStore
	log    *slog.Logger
	cfg    config.Config
	parser Parser
	retry  utils.Backoff
	now    func() time.Time
}

func NewLoader(c HTTPClient, st *store.MemoryStore, log *slog.Logger, cfg config.Config) *Loader {
	return &Loader{
		c:      c,
		st:     st,
		log:    log,
		cfg:    cfg,
		parser: Parser{Now: time.Now},
		retry:  utils.NewBackoff(100*time.Millisecond, 2),
		now:    time.Now,
	}
}

// LoadResult is what an upload produced. When the file could not be read,
// Dataset is the sample, Fallback is set and Warning says why.
type LoadResult struct {
	Dataset  *models.Dataset
	Warning  string
	Fallback bool
	Reused   bool
}

// DatasetID derives a stable ID from the file extension and content, so the
// same bytes always land on the same dataset.
func DatasetID(name string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(path.Ext(name))))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Build parses body into a dataset without registering it.
func Build(p Parser, id, source, name string, body []byte, loadedAt time.Time) (*models.Dataset, error) {
	recs, err := p.Parse(name, body)
	if err != nil {
		return nil, err
	}
	return models.NewDataset(id, source, name, recs, loadedAt), nil
}

// Upload never fails: an unreadable file yields the sample dataset and a
// warning.
func (l *Loader) Upload(ctx context.Context, name string, body []byte) LoadResult {
	id := DatasetID(name, body)
	if ds, err := l.st.Get(id); err == nil {
		l.log.InfoContext(ctx, "upload reused", slog.String("dataset", id), slog.String("file", name))
		return LoadResult{Dataset: ds, Reused: true}
	}

	ds, err := Build(l.parser, id, models.SourceUpload, name, body, l.now())
	if err != nil {
		l.log.WarnContext(ctx, "upload rejected, using sample data",
			slog.String("file", name),
			slog.String("rid", utils.RID(ctx)),
			slog.String("err", err.Error()))
		return LoadResult{
			Dataset:  SampleDataset(),
			Warning:  fmt.Sprintf("could not read %q: %v; showing sample data", name, err),
			Fallback: true,
		}
	}

	stored, existed := l.st.Put(ds)
	l.log.InfoContext(ctx, "upload loaded",
		slog.String("dataset", stored.ID),
		slog.String("file", name),
		slog.Int("records", len(stored.Records)))
	return LoadResult{Dataset: stored, Reused: existed}
}

// Run pulls the configured remote file and registers it as a dataset.
func (l *Loader) Run(ctx context.Context) (LoadResult, error) {
	if l.cfg.DataSourceURL == "" {
		return LoadResult{}, ErrSourceNotConfigured
	}
	body, err := GetWithRetry(ctx, l.c, l.retry, l.cfg.DataSourceURL, l.cfg.MaxUploadBytes)
	if err != nil {
		return LoadResult{}, fmt.Errorf("fetch %s: %w", l.cfg.DataSourceURL, err)
	}

	name := remoteName(l.cfg.DataSourceURL)
	id := "remote-" + DatasetID(name, body)
	if ds, err := l.st.Get(id); err == nil {
		return LoadResult{Dataset: ds, Reused: true}, nil
	}
	ds, err := Build(l.parser, id, models.SourceRemote, name, body, l.now())
	if err != nil {
		return LoadResult{}, fmt.Errorf("parse %s: %w", name, err)
	}
	stored, existed := l.st.Put(ds)
	l.log.InfoContext(ctx, "ingest complete",
		slog.String("dataset", stored.ID),
		slog.Int("records", len(stored.Records)),
		slog.Int("datasets", l.st.Len()))
	return LoadResult{Dataset: stored, Reused: existed}, nil
}

// remoteName is the last path segment of u, as a .csv when it has no known
// extension.
func remoteName(u string) string {
	name := "remote.csv"
	if pu, err := url.Parse(u); err == nil {
		if base := path.Base(pu.Path); base != "." && base != "/" {
			name = base
		}
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".xlsx":
		return name
	}
	return name + ".csv"
}
