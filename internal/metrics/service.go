package metrics

import (
	"net/url"

	"github.com/AngelCh415/metaads-dashboard/internal/format"
	"github.com/AngelCh415/metaads-dashboard/internal/models"
	"github.com/AngelCh415/metaads-dashboard/internal/store"
)

type Service struct{ st *store.MemoryStore }

func NewService(st *store.MemoryStore) *Service { return &Service{st: st} }

// View is a filtered, read-only window on one dataset.
type View struct {
	Dataset *models.Dataset
	Query   Query
	Filter  models.Filter
	Records []models.Record
}

// View parses the query string, resolves the dataset and filters it.
func (s *Service) View(v url.Values) (View, error) {
	q, err := ParseQuery(v)
	if err != nil {
		return View{}, err
	}
	ds, err := s.st.Get(q.Dataset)
	if err != nil {
		return View{}, err
	}
	f, err := q.Filter()
	if err != nil {
		return View{}, err
	}
	return View{Dataset: ds, Query: q, Filter: f, Records: Apply(ds.Records, f)}, nil
}

func (s *Service) Summary(v url.Values) (Summary, error) {
	vw, err := s.View(v)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(vw.Records), nil
}

func (s *Service) Daily(v url.Values) ([]DailyPoint, error) {
	vw, err := s.View(v)
	if err != nil {
		return nil, err
	}
	return Daily(vw.Records), nil
}

func (s *Service) Funnel(v url.Values) ([]FunnelStage, error) {
	vw, err := s.View(v)
	if err != nil {
		return nil, err
	}
	return Funnel(vw.Records), nil
}

func (s *Service) Weekday(v url.Values) ([]WeekdayRow, error) {
	vw, err := s.View(v)
	if err != nil {
		return nil, err
	}
	return Weekday(vw.Records), nil
}

func (s *Service) Breakdown(v url.Values, dim string) (Page[BreakdownRow], error) {
	d, err := ParseDimension(dim)
	if err != nil {
		return Page[BreakdownRow]{}, err
	}
	vw, err := s.View(v)
	if err != nil {
		return Page[BreakdownRow]{}, err
	}
	return paginate(Breakdown(vw.Records, d), vw.Query.Limit, vw.Query.Offset), nil
}

// Options are computed on the whole dataset so narrowing a selection never
// hides the values needed to widen it again.
func (s *Service) Options(v url.Values) (Options, error) {
	q, err := ParseQuery(v)
	if err != nil {
		return Options{}, err
	}
	ds, err := s.st.Get(q.Dataset)
	if err != nil {
		return Options{}, err
	}
	f, err := q.Filter()
	if err != nil {
		return Options{}, err
	}
	return FilterOptions(ds.Records, f), nil
}

// Dashboard carries every widget of the screen for one filter.
type Dashboard struct {
	Dataset        models.DatasetMeta    `json:"dataset"`
	Options        Options               `json:"options"`
	Summary        Summary               `json:"summary"`
	Display        map[string]string     `json:"display"`
	Daily          []DailyPoint          `json:"daily"`
	Funnel         []FunnelStage         `json:"funnel"`
	TopMessageRate []RankedCampaign      `json:"top_message_rate"`
	BestCPL        []RankedCampaign      `json:"best_cpl"`
	TopSpend       []RankedCampaign      `json:"top_spend"`
	Weekday        []WeekdayRow          `json:"weekday"`
	Performance    []CampaignPerformance `json:"campaign_performance"`
	Campaigns      []BreakdownRow        `json:"campaigns"`
	Ads            []BreakdownRow        `json:"ads"`
}

func (s *Service) Dashboard(v url.Values) (Dashboard, error) {
	vw, err := s.View(v)
	if err != nil {
		return Dashboard{}, err
	}
	return Build(vw), nil
}

func Build(vw View) Dashboard {
	recs := vw.Records
	sum := Summarize(recs)
	return Dashboard{
		Dataset:        vw.Dataset.Meta(),
		Options:        FilterOptions(vw.Dataset.Records, vw.Filter),
		Summary:        sum,
		Display:        Display(sum),
		Daily:          Daily(recs),
		Funnel:         Funnel(recs),
		TopMessageRate: TopMessageRate(recs),
		BestCPL:        BestCPL(recs),
		TopSpend:       TopSpend(recs),
		Weekday:        Weekday(recs),
		Performance:    Performance(recs),
		Campaigns:      Breakdown(recs, ByCampaign),
		Ads:            Breakdown(recs, ByAd),
	}
}

// Display formats the KPI cards for a pt-BR audience.
func Display(s Summary) map[string]string {
	return map[string]string{
		"impressions":  format.Int(s.Impressions),
		"reach":        format.Int(s.Reach),
		"clicks":       format.Int(s.Clicks),
		"messages":     format.Int(s.Messages),
		"spend":        format.Money(s.Spend),
		"revenue":      format.Money(s.Revenue),
		"ctr":          format.Percent(s.CTR),
		"cpc":          format.Money(s.CPC),
		"cpm":          format.Money(s.CPM),
		"cpl":          format.Money(s.CPL),
		"message_rate": format.Percent(s.MessageRate),
		"roas":         format.Ratio(s.ROAS) + "x",
		"roi":          format.Percent(s.ROI),
	}
}
