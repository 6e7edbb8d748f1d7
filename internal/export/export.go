// Package export writes filtered campaign records as CSV, JSON, XLSX or a
// PDF report.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

// DefaultName is the base name of downloads.
const DefaultName = "meta_ads_data"

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, XLSX, PDF:
		return f, nil
	case "":
		return CSV, nil
	}
	return "", fmt.Errorf("%w: %q (want csv, json, xlsx or pdf)", ErrUnknownFormat, s)
}

// ParseFormats reads a comma separated list such as "csv,pdf".
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, p := range strings.Split(s, ",") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		f, err := ParseFormat(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return []Format{CSV}, nil
	}
	return out, nil
}

func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) FileName(base string) string {
	if base == "" {
		base = DefaultName
	}
	return base + "." + string(f)
}

// Input is everything a writer may need. Records are the filtered rows;
// the PDF also uses Summary and Campaigns.
type Input struct {
	Dataset     models.DatasetMeta
	Records     []models.Record
	Summary     metrics.Summary
	Campaigns   []metrics.BreakdownRow
	From, To    string
	GeneratedAt time.Time
}

// NewInput derives the report sections from a filtered view.
func NewInput(vw metrics.View, now time.Time) Input {
	return Input{
		Dataset:     vw.Dataset.Meta(),
		Records:     vw.Records,
		Summary:     metrics.Summarize(vw.Records),
		Campaigns:   metrics.Breakdown(vw.Records, metrics.ByCampaign),
		From:        vw.Query.From,
		To:          vw.Query.To,
		GeneratedAt: now,
	}
}

// Row is one exported record with its derived ratios.
type Row struct {
	Date        string  `json:"date"`
	Campaign    string  `json:"campaign"`
	AdSet       string  `json:"adset"`
	Ad          string  `json:"ad"`
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach"`
	Clicks      int64   `json:"clicks"`
	Messages    int64   `json:"messages"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	CPM         float64 `json:"cpm"`
	ROAS        float64 `json:"roas"`
	ROI         float64 `json:"roi"`
	CPL         float64 `json:"cpl"`
}

var header = []string{
	"date", "campaign", "adset", "ad",
	"impressions", "reach", "clicks", "messages", "spend", "revenue",
	"ctr", "cpc", "cpm", "roas", "roi", "cpl",
}

func rows(recs []models.Record) []Row {
	out := make([]Row, 0, len(recs))
	for _, r := range recs {
		rt := r.Ratios()
		out = append(out, Row{
			Date:        r.Date.Format(models.DateLayout),
			Campaign:    r.Campaign,
			AdSet:       r.AdSet,
			Ad:          r.Ad,
			Impressions: r.Impressions,
			Reach:       r.Reach,
			Clicks:      r.Clicks,
			Messages:    r.Messages,
			Spend:       models.Round2(r.Spend),
			Revenue:     models.Round2(r.Revenue),
			CTR:         models.Round2(rt.CTR),
			CPC:         models.Round2(rt.CPC),
			CPM:         models.Round2(rt.CPM),
			ROAS:        models.Round2(rt.ROAS),
			ROI:         models.Round2(rt.ROI),
			CPL:         models.Round2(rt.CPL),
		})
	}
	return out
}

// Write renders in to w in format f.
func Write(w io.Writer, f Format, in Input) error {
	switch f {
	case CSV:
		return writeCSV(w, in.Records)
	case JSON:
		return writeJSON(w, in)
	case XLSX:
		return writeXLSX(w, in)
	case PDF:
		return writePDF(w, in)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func writeJSON(w io.Writer, in Input) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Dataset models.DatasetMeta `json:"dataset"`
		From    string             `json:"from,omitempty"`
		To      string             `json:"to,omitempty"`
		Summary metrics.Summary    `json:"summary"`
		Rows    []Row              `json:"rows"`
	}{in.Dataset, in.From, in.To, in.Summary, rows(in.Records)})
}

// WriteFile writes dir/name.<format> and returns its absolute path.
func WriteFile(dir, name string, f Format, in Input) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output dir: %w", err)
	}
	path := filepath.Join(dir, f.FileName(name))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating %s file: %w", f, err)
	}
	if err := Write(file, f, in); err != nil {
		file.Close()
		return "", fmt.Errorf("error writing %s: %w", f, err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return filepath.Abs(path)
}
