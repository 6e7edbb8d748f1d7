package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

func input() Input {
	d := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	recs := []models.Record{
		{Date: d, Campaign: "Verão", AdSet: "S1", Ad: "Anúncio 1", Impressions: 2000, Reach: 1500, Clicks: 40, Messages: 8, Spend: 80, Revenue: 200},
		{Date: d, Campaign: "Inverno", AdSet: "S2", Ad: "Anúncio 2", Impressions: 0, Clicks: 0, Spend: 10},
	}
	ds := models.NewDataset("abc", models.SourceUpload, "ads.csv", recs, d)
	return NewInput(metrics.View{Dataset: ds, Records: recs}, d)
}

func TestParseFormats(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, CSV, f)

	fs, err := ParseFormats("csv, PDF,xlsx")
	require.NoError(t, err)
	assert.Equal(t, []Format{CSV, PDF, XLSX}, fs)

	_, err = ParseFormats("csv,docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Equal(t, "meta_ads_data.csv", CSV.FileName(""))
	assert.Equal(t, "application/pdf", PDF.ContentType())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, input()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, header, recs[0])
	assert.Equal(t, []string{
		"2025-01-02", "Verão", "S1", "Anúncio 1",
		"2000", "1500", "40", "8", "80.00", "200.00",
		"2.00", "2.00", "40.00", "2.50", "150.00", "10.00",
	}, recs[1])
	assert.Equal(t, "0.00", recs[2][10], "ctr without impressions")
	assert.Equal(t, "0.00", recs[2][13], "roas without revenue")
}

func TestCSVRoundsLikeDashboard(t *testing.T) {
	d := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	recs := []models.Record{{Date: d, Campaign: "Loss", Impressions: 100, Clicks: 10, Spend: 1000, Revenue: 876.54}}
	ds := models.NewDataset("neg", models.SourceUpload, "neg.csv", recs, d)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, NewInput(metrics.View{Dataset: ds, Records: recs}, d)))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "-12.35", rows[1][14])
	assert.Equal(t, fmt.Sprintf("%.2f", metrics.Summarize(recs).ROI), rows[1][14])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, input()))

	var got struct {
		Dataset models.DatasetMeta `json:"dataset"`
		Summary metrics.Summary    `json:"summary"`
		Rows    []Row              `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got.Dataset.ID)
	assert.Len(t, got.Rows, 2)
	assert.InDelta(t, 90, got.Summary.Spend, 1e-9)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, input()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{dataSheet, campaignSheet}, f.GetSheetList())

	data, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, data, 3)
	assert.Equal(t, "Verão", data[1][1])

	camps, err := f.GetRows(campaignSheet)
	require.NoError(t, err)
	require.Len(t, camps, 3)
	assert.Equal(t, "Inverno", camps[1][0])
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PDF, input()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, "report", CSV, input())
	require.NoError(t, err)
	assert.Equal(t, "report.csv", filepath.Base(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Anúncio 1")
}
