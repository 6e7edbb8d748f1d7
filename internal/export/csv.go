package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

func writeCSV(w io.Writer, recs []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows(recs) {
		rec := []string{
			r.Date, r.Campaign, r.AdSet, r.Ad,
			itoa(r.Impressions), itoa(r.Reach), itoa(r.Clicks), itoa(r.Messages),
			ftoa(r.Spend), ftoa(r.Revenue),
			ftoa(r.CTR), ftoa(r.CPC), ftoa(r.CPM), ftoa(r.ROAS), ftoa(r.ROI), ftoa(r.CPL),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa(n int64) string   { return strconv.FormatInt(n, 10) }
func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
