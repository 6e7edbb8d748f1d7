package metrics

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

var ErrInvalidQuery = errors.New("invalid query")

var validate = validator.New()

// Query is the parsed form of the dashboard query string.
type Query struct {
	Dataset   string   `validate:"required,max=64"`
	From      string   `validate:"omitempty,datetime=2006-01-02"`
	To        string   `validate:"omitempty,datetime=2006-01-02"`
	Campaigns []string `validate:"dive,max=256"`
	AdSets    []string `validate:"dive,max=256"`
	Ads       []string `validate:"dive,max=256"`
	Limit     int      `validate:"gte=0,lte=1000"`
	Offset    int      `validate:"gte=0"`
}

// ParseQuery reads dataset, from, to, campaign, adset, ad, limit and offset.
// Selections may be comma separated, repeated, or both.
func ParseQuery(v url.Values) (Query, error) {
	q := Query{
		Dataset:   strings.TrimSpace(v.Get("dataset")),
		From:      strings.TrimSpace(v.Get("from")),
		To:        strings.TrimSpace(v.Get("to")),
		Campaigns: multi(v, "campaign"),
		AdSets:    multi(v, "adset"),
		Ads:       multi(v, "ad"),
		Limit:     atoiDef(v.Get("limit"), 100),
		Offset:    atoiDef(v.Get("offset"), 0),
	}
	if q.Dataset == "" {
		q.Dataset = models.SampleDatasetID
	}
	if err := validate.Struct(q); err != nil {
		return q, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if _, err := q.Filter(); err != nil {
		return q, err
	}
	return q, nil
}

// Filter converts the query to a record filter; from after to is rejected.
func (q Query) Filter() (models.Filter, error) {
	f := models.Filter{Campaigns: q.Campaigns, AdSets: q.AdSets, Ads: q.Ads}
	var err error
	if f.From, err = parseDay(q.From); err != nil {
		return f, err
	}
	if f.To, err = parseDay(q.To); err != nil {
		return f, err
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, fmt.Errorf("%w: from %s is after to %s", ErrInvalidQuery, q.From, q.To)
	}
	return f, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidQuery, s)
	}
	return &t, nil
}

func multi(v url.Values, key string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, raw := range v[key] {
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func set(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}

func inDates(r models.Record, f models.Filter) bool {
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Date.After(*f.To) {
		return false
	}
	return true
}

func member(s map[string]struct{}, v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// Apply returns the records matching f in their original order. The input
// slice is never modified.
func Apply(recs []models.Record, f models.Filter) []models.Record {
	cs, as, ads := set(f.Campaigns), set(f.AdSets), set(f.Ads)
	out := make([]models.Record, 0, len(recs))
	for _, r := range recs {
		if !inDates(r, f) || !member(cs, r.Campaign) || !member(as, r.AdSet) || !member(ads, r.Ad) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options lists the selectable values. Each level is narrowed by the
// selections above it: campaigns by dates, ad sets by campaigns, ads by ad
// sets.
type Options struct {
	MinDate   string   `json:"min_date,omitempty"`
	MaxDate   string   `json:"max_date,omitempty"`
	Campaigns []string `json:"campaigns"`
	AdSets    []string `json:"adsets"`
	Ads       []string `json:"ads"`
}

func FilterOptions(recs []models.Record, f models.Filter) Options {
	var o Options
	var min, max time.Time
	for i, r := range recs {
		if i == 0 || r.Date.Before(min) {
			min = r.Date
		}
		if i == 0 || r.Date.After(max) {
			max = r.Date
		}
	}
	if len(recs) > 0 {
		o.MinDate, o.MaxDate = min.Format(models.DateLayout), max.Format(models.DateLayout)
	}

	cs, as := set(f.Campaigns), set(f.AdSets)
	camps, sets, ads := map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{}
	for _, r := range recs {
		if !inDates(r, f) {
			continue
		}
		camps[r.Campaign] = struct{}{}
		if !member(cs, r.Campaign) {
			continue
		}
		sets[r.AdSet] = struct{}{}
		if !member(as, r.AdSet) {
			continue
		}
		ads[r.Ad] = struct{}{}
	}
	o.Campaigns, o.AdSets, o.Ads = sortedKeys(camps), sortedKeys(sets), sortedKeys(ads)
	return o
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return d
	}
	return v
}
