package metrics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

const topN = 10

var ErrUnknownDimension = errors.New("unknown dimension")

type Dimension string

const (
	ByCampaign Dimension = "campaign"
	ByAdSet    Dimension = "adset"
	ByAd       Dimension = "ad"
)

func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case ByCampaign, ByAdSet, ByAd:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q (want campaign, adset or ad)", ErrUnknownDimension, s)
}

func (d Dimension) key(r models.Record) string {
	switch d {
	case ByAdSet:
		return r.AdSet
	case ByAd:
		return r.Ad
	}
	return r.Campaign
}

// group sums records per key in record order. keys keeps first-seen order.
type group struct {
	keys   []string
	totals map[string]*models.Totals
}

func groupBy(recs []models.Record, key func(models.Record) string) group {
	g := group{totals: map[string]*models.Totals{}}
	for _, r := range recs {
		k := key(r)
		t, ok := g.totals[k]
		if !ok {
			t = &models.Totals{}
			g.totals[k] = t
			g.keys = append(g.keys, k)
		}
		t.Add(r)
	}
	return g
}

func total(recs []models.Record) models.Totals {
	var t models.Totals
	for _, r := range recs {
		t.Add(r)
	}
	return t
}

type Summary struct {
	Records int `json:"records"`
	models.Totals
	models.Ratios
}

func Summarize(recs []models.Record) Summary {
	t := total(recs)
	return Summary{Records: len(recs), Totals: roundTotals(t), Ratios: roundRatios(models.RatiosOf(t))}
}

type DailyPoint struct {
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
}

// Daily returns one point per day present, oldest first.
func Daily(recs []models.Record) []DailyPoint {
	g := groupBy(recs, func(r models.Record) string { return r.Date.Format(models.DateLayout) })
	keys := append([]string(nil), g.keys...)
	sort.Strings(keys)
	out := make([]DailyPoint, 0, len(keys))
	for _, k := range keys {
		t := g.totals[k]
		out = append(out, DailyPoint{
			Date:        k,
			Impressions: t.Impressions,
			Reach:       t.Reach,
			Clicks:      t.Clicks,
			Spend:       models.Round2(t.Spend),
		})
	}
	return out
}

type FunnelStage struct {
	Stage   string  `json:"stage"`
	Label   string  `json:"label"`
	Value   int64   `json:"value"`
	Percent float64 `json:"percent"`
}

// Funnel lists impressions, reach, clicks and messages with each stage as a
// percentage of impressions.
func Funnel(recs []models.Record) []FunnelStage {
	t := total(recs)
	stages := []FunnelStage{
		{Stage: "impressions", Label: "Impressões", Value: t.Impressions},
		{Stage: "reach", Label: "Alcance", Value: t.Reach},
		{Stage: "clicks", Label: "Cliques", Value: t.Clicks},
		{Stage: "messages", Label: "Mensagens", Value: t.Messages},
	}
	for i := range stages {
		stages[i].Percent = models.Round2(models.SafeDiv(float64(stages[i].Value), float64(t.Impressions)) * 100)
	}
	return stages
}

type RankedCampaign struct {
	Campaign string  `json:"campaign"`
	Value    float64 `json:"value"`
	Share    float64 `json:"share,omitempty"`
}

// rank orders by value (desc or asc), name ascending on ties, and keeps topN.
func rank(rows []RankedCampaign, desc bool) []RankedCampaign {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			if desc {
				return rows[i].Value > rows[j].Value
			}
			return rows[i].Value < rows[j].Value
		}
		return rows[i].Campaign < rows[j].Campaign
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	for i := range rows {
		rows[i].Value = models.Round2(rows[i].Value)
	}
	return rows
}

// TopMessageRate ranks campaigns by messages/clicks.
func TopMessageRate(recs []models.Record) []RankedCampaign {
	g := groupBy(recs, ByCampaign.key)
	rows := make([]RankedCampaign, 0, len(g.keys))
	for _, k := range g.keys {
		rows = append(rows, RankedCampaign{Campaign: k, Value: models.RatiosOf(*g.totals[k]).MessageRate})
	}
	return rank(rows, true)
}

// BestCPL ranks campaigns by cost per message, cheapest first. Campaigns
// without messages have no CPL and are left out.
func BestCPL(recs []models.Record) []RankedCampaign {
	g := groupBy(recs, ByCampaign.key)
	rows := make([]RankedCampaign, 0, len(g.keys))
	for _, k := range g.keys {
		t := g.totals[k]
		if t.Messages == 0 {
			continue
		}
		rows = append(rows, RankedCampaign{Campaign: k, Value: models.RatiosOf(*t).CPL})
	}
	return rank(rows, false)
}

// TopSpend ranks campaigns by spend with their share of the total.
func TopSpend(recs []models.Record) []RankedCampaign {
	g := groupBy(recs, ByCampaign.key)
	all := total(recs).Spend
	rows := make([]RankedCampaign, 0, len(g.keys))
	for _, k := range g.keys {
		s := g.totals[k].Spend
		rows = append(rows, RankedCampaign{Campaign: k, Value: s, Share: models.Round2(models.SafeDiv(s, all) * 100)})
	}
	return rank(rows, true)
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var weekdayLabels = map[time.Weekday]string{
	time.Monday:    "Segunda",
	time.Tuesday:   "Terça",
	time.Wednesday: "Quarta",
	time.Thursday:  "Quinta",
	time.Friday:    "Sexta",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

type WeekdayRow struct {
	Weekday     string  `json:"weekday"`
	Label       string  `json:"label"`
	Messages    int64   `json:"messages"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Spend       float64 `json:"spend"`
	CTR         float64 `json:"ctr"`
}

// Weekday groups by day of week, Monday first. Days with no records are
// omitted.
func Weekday(recs []models.Record) []WeekdayRow {
	g := groupBy(recs, func(r models.Record) string { return r.Date.Weekday().String() })
	out := make([]WeekdayRow, 0, len(g.keys))
	for _, wd := range weekdayOrder {
		t, ok := g.totals[wd.String()]
		if !ok {
			continue
		}
		out = append(out, WeekdayRow{
			Weekday:     wd.String(),
			Label:       weekdayLabels[wd],
			Messages:    t.Messages,
			Clicks:      t.Clicks,
			Impressions: t.Impressions,
			Spend:       models.Round2(t.Spend),
			CTR:         models.Round2(models.RatiosOf(*t).CTR),
		})
	}
	return out
}

type CampaignPerformance struct {
	Campaign string  `json:"campaign"`
	Spend    float64 `json:"spend"`
	Revenue  float64 `json:"revenue"`
	ROAS     float64 `json:"roas"`
	CTR      float64 `json:"ctr"`
}

// Performance lists every campaign by spend, highest first.
func Performance(recs []models.Record) []CampaignPerformance {
	g := groupBy(recs, ByCampaign.key)
	keys := append([]string(nil), g.keys...)
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := g.totals[keys[i]].Spend, g.totals[keys[j]].Spend
		if a != b {
			return a > b
		}
		return keys[i] < keys[j]
	})
	out := make([]CampaignPerformance, 0, len(keys))
	for _, k := range keys {
		t := g.totals[k]
		r := models.RatiosOf(*t)
		out = append(out, CampaignPerformance{
			Campaign: k,
			Spend:    models.Round2(t.Spend),
			Revenue:  models.Round2(t.Revenue),
			ROAS:     models.Round2(r.ROAS),
			CTR:      models.Round2(r.CTR),
		})
	}
	return out
}

type BreakdownRow struct {
	Key string `json:"key"`
	models.Totals
	models.Ratios
}

// Breakdown sums per campaign, ad set or ad, ordered by key.
func Breakdown(recs []models.Record, d Dimension) []BreakdownRow {
	g := groupBy(recs, d.key)
	keys := append([]string(nil), g.keys...)
	sort.Strings(keys)
	out := make([]BreakdownRow, 0, len(keys))
	for _, k := range keys {
		t := *g.totals[k]
		out = append(out, BreakdownRow{Key: k, Totals: roundTotals(t), Ratios: roundRatios(models.RatiosOf(t))})
	}
	return out
}

// Page is one window of a longer result.
type Page[T any] struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

func paginate[T any](rows []T, limit, offset int) Page[T] {
	limit, offset = clampLimitOffset(limit, offset, len(rows))
	p := Page[T]{Total: len(rows), Limit: limit, Offset: offset, Items: []T{}}
	if offset >= len(rows) {
		return p
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	p.Items = rows[offset:end]
	return p
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}

func roundTotals(t models.Totals) models.Totals {
	t.Spend = models.Round2(t.Spend)
	t.Revenue = models.Round2(t.Revenue)
	return t
}

func roundRatios(r models.Ratios) models.Ratios {
	return models.Ratios{
		CTR:         models.Round2(r.CTR),
		CPC:         models.Round2(r.CPC),
		CPM:         models.Round2(r.CPM),
		ROAS:        models.Round2(r.ROAS),
		ROI:         models.Round2(r.ROI),
		CPL:         models.Round2(r.CPL),
		MessageRate: models.Round2(r.MessageRate),
	}
}
