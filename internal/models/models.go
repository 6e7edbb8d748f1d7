package models

import (
	"math"
	"time"
)

const (
	SourceSample = "sample"
	SourceUpload = "upload"
	SourceRemote = "remote"

	SampleDatasetID = "sample"
)

// Record is one row of campaign performance. Ratios are never stored;
// call Ratios() so they always derive from the counters.
type Record struct {
	Date        time.Time
	Campaign    string
	AdSet       string
	Ad          string
	Impressions int64
	Reach       int64
	Clicks      int64
	Messages    int64
	Spend       float64
	Revenue     float64
}

func (r Record) Totals() Totals {
	return Totals{
		Impressions: r.Impressions,
		Reach:       r.Reach,
		Clicks:      r.Clicks,
		Messages:    r.Messages,
		Spend:       r.Spend,
		Revenue:     r.Revenue,
	}
}

func (r Record) Ratios() Ratios { return RatiosOf(r.Totals()) }

type Totals struct {
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach"`
	Clicks      int64   `json:"clicks"`
	Messages    int64   `json:"messages"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
}

func (t *Totals) Add(r Record) {
	t.Impressions += r.Impressions
	t.Reach += r.Reach
	t.Clicks += r.Clicks
	t.Messages += r.Messages
	t.Spend += r.Spend
	t.Revenue += r.Revenue
}

type Ratios struct {
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	CPM         float64 `json:"cpm"`
	ROAS        float64 `json:"roas"`
	ROI         float64 `json:"roi"`
	CPL         float64 `json:"cpl"`
	MessageRate float64 `json:"message_rate"`
}

// RatiosOf derives every ratio from summed counters; a zero divisor yields 0.
func RatiosOf(t Totals) Ratios {
	imp := float64(t.Impressions)
	clk := float64(t.Clicks)
	msg := float64(t.Messages)
	return Ratios{
		CTR:         SafeDiv(clk, imp) * 100,
		CPC:         SafeDiv(t.Spend, clk),
		CPM:         SafeDiv(t.Spend, imp) * 1000,
		ROAS:        SafeDiv(t.Revenue, t.Spend),
		ROI:         SafeDiv(t.Revenue-t.Spend, t.Spend) * 100,
		CPL:         SafeDiv(t.Spend, msg),
		MessageRate: SafeDiv(msg, clk) * 100,
	}
}

func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Dataset is an immutable set of records. Callers must not modify Records.
type Dataset struct {
	ID       string
	Source   string
	FileName string
	Records  []Record
	MinDate  time.Time
	MaxDate  time.Time
	LoadedAt time.Time
}

func NewDataset(id, source, fileName string, recs []Record, loadedAt time.Time) *Dataset {
	ds := &Dataset{ID: id, Source: source, FileName: fileName, Records: recs, LoadedAt: loadedAt}
	for i, r := range recs {
		if i == 0 || r.Date.Before(ds.MinDate) {
			ds.MinDate = r.Date
		}
		if i == 0 || r.Date.After(ds.MaxDate) {
			ds.MaxDate = r.Date
		}
	}
	return ds
}

type DatasetMeta struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	FileName string `json:"file_name,omitempty"`
	Records  int    `json:"records"`
	MinDate  string `json:"min_date,omitempty"`
	MaxDate  string `json:"max_date,omitempty"`
	LoadedAt string `json:"loaded_at"`
}

func (d *Dataset) Meta() DatasetMeta {
	m := DatasetMeta{
		ID:       d.ID,
		Source:   d.Source,
		FileName: d.FileName,
		Records:  len(d.Records),
		LoadedAt: d.LoadedAt.UTC().Format(time.RFC3339),
	}
	if len(d.Records) > 0 {
		m.MinDate = d.MinDate.Format(DateLayout)
		m.MaxDate = d.MaxDate.Format(DateLayout)
	}
	return m
}

const DateLayout = "2006-01-02"

// Filter selects records. Nil bounds and empty selections do not filter.
type Filter struct {
	From      *time.Time
	To        *time.Time
	Campaigns []string
	AdSets    []string
	Ads       []string
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Round2 rounds half away from zero to cents.
func Round2(f float64) float64 { return math.Round(f*100) / 100 }
