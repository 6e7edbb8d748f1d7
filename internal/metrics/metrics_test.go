package metrics

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/metaads-dashboard/internal/models"
	"github.com/AngelCh415/metaads-dashboard/internal/store"
)

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func fixture() []models.Record {
	return []models.Record{
		{Date: day("2025-01-06"), Campaign: "A", AdSet: "S1", Ad: "X", Impressions: 1000, Reach: 800, Clicks: 50, Messages: 10, Spend: 100, Revenue: 300},
		{Date: day("2025-01-07"), Campaign: "A", AdSet: "S2", Ad: "Y", Impressions: 1000, Reach: 700, Clicks: 50, Messages: 0, Spend: 50, Revenue: 0},
		{Date: day("2025-01-07"), Campaign: "B", AdSet: "S1", Ad: "X", Impressions: 0, Reach: 0, Clicks: 0, Messages: 0, Spend: 0, Revenue: 20},
		{Date: day("2025-01-12"), Campaign: "C", AdSet: "S3", Ad: "Z", Impressions: 500, Reach: 400, Clicks: 20, Messages: 4, Spend: 20, Revenue: 40},
	}
}

func TestCTRZeroImpressions(t *testing.T) {
	r := models.RatiosOf(models.Totals{Clicks: 5})
	assert.Zero(t, r.CTR)
	assert.Zero(t, r.CPM)

	r = models.RatiosOf(models.Totals{Impressions: 200, Clicks: 5})
	assert.InDelta(t, 2.5, r.CTR, 1e-9)
}

func TestROASZeroSpend(t *testing.T) {
	r := models.RatiosOf(models.Totals{Revenue: 100})
	assert.Zero(t, r.ROAS)
	assert.Zero(t, r.ROI)

	r = models.RatiosOf(models.Totals{Spend: 50, Revenue: 100})
	assert.InDelta(t, 2.0, r.ROAS, 1e-9)
	assert.InDelta(t, 100.0, r.ROI, 1e-9)
}

func TestApplyDateRangeInclusive(t *testing.T) {
	recs := fixture()
	from, to := day("2025-01-07"), day("2025-01-12")
	got := Apply(recs, models.Filter{From: &from, To: &to})
	require.Len(t, got, 3)
	for _, r := range got {
		assert.False(t, r.Date.Before(from))
		assert.False(t, r.Date.After(to))
	}
	assert.Len(t, recs, 4, "source untouched")
}

func TestApplySelections(t *testing.T) {
	got := Apply(fixture(), models.Filter{Campaigns: []string{"A"}, Ads: []string{"Y"}})
	require.Len(t, got, 1)
	assert.Equal(t, "S2", got[0].AdSet)

	assert.Len(t, Apply(fixture(), models.Filter{}), 4)
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(url.Values{"campaign": {"A,B", "C", "A"}, "from": {"2025-01-01"}})
	require.NoError(t, err)
	assert.Equal(t, models.SampleDatasetID, q.Dataset)
	assert.Equal(t, []string{"A", "B", "C"}, q.Campaigns)
	assert.Equal(t, 100, q.Limit)

	_, err = ParseQuery(url.Values{"from": {"2025-02-01"}, "to": {"2025-01-01"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseQuery(url.Values{"from": {"01/02/2025"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseQuery(url.Values{"offset": {"-1"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestFilterOptionsCascade(t *testing.T) {
	o := FilterOptions(fixture(), models.Filter{Campaigns: []string{"A"}})
	assert.Equal(t, []string{"A", "B", "C"}, o.Campaigns)
	assert.Equal(t, []string{"S1", "S2"}, o.AdSets)
	assert.Equal(t, []string{"X", "Y"}, o.Ads)
	assert.Equal(t, "2025-01-06", o.MinDate)
	assert.Equal(t, "2025-01-12", o.MaxDate)

	o = FilterOptions(fixture(), models.Filter{Campaigns: []string{"A"}, AdSets: []string{"S1"}})
	assert.Equal(t, []string{"X"}, o.Ads)
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixture())
	assert.Equal(t, 4, s.Records)
	assert.EqualValues(t, 2500, s.Impressions)
	assert.EqualValues(t, 120, s.Clicks)
	assert.InDelta(t, 170, s.Spend, 1e-9)
	assert.InDelta(t, 4.8, s.CTR, 1e-9)
	assert.InDelta(t, 2.12, s.ROAS, 1e-9)
	assert.InDelta(t, 12.14, s.CPL, 1e-9)
}

func TestDailyAscending(t *testing.T) {
	d := Daily(fixture())
	require.Len(t, d, 3)
	assert.Equal(t, "2025-01-06", d[0].Date)
	assert.Equal(t, "2025-01-07", d[1].Date)
	assert.EqualValues(t, 1000, d[1].Impressions)
	assert.InDelta(t, 50, d[1].Spend, 1e-9)
}

func TestFunnelPercentOfImpressions(t *testing.T) {
	f := Funnel(fixture())
	require.Len(t, f, 4)
	assert.Equal(t, "impressions", f[0].Stage)
	assert.InDelta(t, 100, f[0].Percent, 1e-9)
	assert.InDelta(t, 76, f[1].Percent, 1e-9)
	assert.InDelta(t, 0.56, f[3].Percent, 1e-9)

	for _, s := range Funnel(nil) {
		assert.Zero(t, s.Percent)
	}
}

func TestRankings(t *testing.T) {
	recs := fixture()

	mr := TopMessageRate(recs)
	require.Len(t, mr, 3)
	assert.Equal(t, "C", mr[0].Campaign)
	assert.InDelta(t, 20, mr[0].Value, 1e-9)
	assert.Equal(t, "B", mr[2].Campaign)

	cpl := BestCPL(recs)
	require.Len(t, cpl, 2, "campaign without messages excluded")
	assert.Equal(t, "C", cpl[0].Campaign)
	assert.InDelta(t, 5, cpl[0].Value, 1e-9)
	assert.InDelta(t, 15, cpl[1].Value, 1e-9)

	sp := TopSpend(recs)
	assert.Equal(t, "A", sp[0].Campaign)
	assert.InDelta(t, 88.24, sp[0].Share, 1e-9)
}

func TestRankKeepsTopTen(t *testing.T) {
	var recs []models.Record
	for i := 0; i < 15; i++ {
		recs = append(recs, models.Record{Date: day("2025-01-01"), Campaign: string(rune('a' + i)), Spend: float64(i)})
	}
	sp := TopSpend(recs)
	require.Len(t, sp, 10)
	assert.Equal(t, "o", sp[0].Campaign)
}

func TestWeekdayOrderAndLabels(t *testing.T) {
	w := Weekday(fixture())
	require.Len(t, w, 3)
	assert.Equal(t, "Monday", w[0].Weekday)
	assert.Equal(t, "Segunda", w[0].Label)
	assert.Equal(t, "Terça", w[1].Label)
	assert.Equal(t, "Domingo", w[2].Label)
	assert.InDelta(t, 5, w[0].CTR, 1e-9)
}

func TestPerformanceBySpend(t *testing.T) {
	p := Performance(fixture())
	require.Len(t, p, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{p[0].Campaign, p[1].Campaign, p[2].Campaign})
	assert.InDelta(t, 2, p[0].ROAS, 1e-9)
	assert.Zero(t, p[2].ROAS)
}

func TestBreakdown(t *testing.T) {
	rows := Breakdown(fixture(), ByAd)
	require.Len(t, rows, 3)
	assert.Equal(t, "X", rows[0].Key)
	assert.EqualValues(t, 1000, rows[0].Impressions)
	assert.InDelta(t, 10, rows[0].CPL, 1e-9)

	_, err := ParseDimension("channel")
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	p := paginate(rows, 2, 1)
	assert.Equal(t, []int{2, 3}, p.Items)
	assert.Equal(t, 5, p.Total)

	p = paginate(rows, 2, 10)
	assert.Empty(t, p.Items)

	p = paginate(rows, 0, 0)
	assert.Len(t, p.Items, 5)
}

func TestAggregatesAreRepeatable(t *testing.T) {
	ds := models.NewDataset("d1", models.SourceUpload, "x.csv", fixture(), time.Now())
	st := store.NewMemoryStore(4, nil)
	st.Put(ds)
	svc := NewService(st)

	v := url.Values{"dataset": {"d1"}}
	first, err := svc.Dashboard(v)
	require.NoError(t, err)
	second, err := svc.Dashboard(v)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "R$ 170,00", first.Display["spend"])
}

func TestServiceUnknownDataset(t *testing.T) {
	svc := NewService(store.NewMemoryStore(4, nil))
	_, err := svc.Summary(url.Values{"dataset": {"nope"}})
	assert.ErrorIs(t, err, store.ErrDatasetNotFound)
}

func TestServiceBreakdownPaging(t *testing.T) {
	st := store.NewMemoryStore(4, nil)
	st.Put(models.NewDataset("d1", models.SourceUpload, "", fixture(), time.Now()))
	svc := NewService(st)

	p, err := svc.Breakdown(url.Values{"dataset": {"d1"}, "limit": {"2"}}, "campaign")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Total)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "A", p.Items[0].Key)
}
