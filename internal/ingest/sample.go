package ingest

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

const sampleCampaigns = 5

// SampleDataset is generated once per process and shared read-only.
var SampleDataset = sync.OnceValue(func() *models.Dataset {
	return models.NewDataset(models.SampleDatasetID, models.SourceSample, "", generateSample(), time.Now())
})

// generateSample builds January 2025 for five campaigns with a fixed seed so
// every process shows the same numbers.
func generateSample() []models.Record {
	r := rand.New(rand.NewPCG(2025, 1))
	uniform := func(lo, hi float64) float64 { return lo + r.Float64()*(hi-lo) }

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	var out []models.Record
	for c := 1; c <= sampleCampaigns; c++ {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			impressions := int64(1000 + r.IntN(9000))
			reach := int64(float64(impressions) * uniform(0.7, 0.9))
			clicks := int64(float64(reach) * uniform(0.01, 0.1))
			messages := int64(float64(clicks) * uniform(0.1, 0.5))
			spend := models.Round2(uniform(50, 500))
			revenue := models.Round2(spend * uniform(0.8, 4.0))

			out = append(out, models.Record{
				Date:        d,
				Campaign:    fmt.Sprintf("Campanha %d", c),
				AdSet:       fmt.Sprintf("Conjunto %d", d.Day()%3+1),
				Ad:          fmt.Sprintf("Anúncio %d", d.Day()%5+1),
				Impressions: impressions,
				Reach:       reach,
				Clicks:      clicks,
				Messages:    messages,
				Spend:       spend,
				Revenue:     revenue,
			})
		}
	}
	return out
}
