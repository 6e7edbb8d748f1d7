package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
)

func TestMain(m *testing.M) {
	pterm.DisableColor()
	color.NoColor = true
	os.Exit(m.Run())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp("test")
	app.SetOutput(&out, &errOut)
	app.SetArgs(args)
	err := app.Execute()
	return out.String(), err
}

func TestSummaryOnSample(t *testing.T) {
	out, err := run(t, "summary", "--campaign", "Campanha 3", "--from", "2025-01-01", "--to", "2025-01-07")
	require.NoError(t, err)
	assert.Contains(t, out, "sample (7 records)")
	assert.Contains(t, out, "Campanha 3")
	assert.NotContains(t, out, "Campanha 4")
	assert.Contains(t, out, "R$ ")
	assert.Contains(t, out, "2025-01-07")
}

func TestSummaryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ads.csv")
	body := "date;campaign;clicks;impressions;spend;revenue\n2025-01-01;Promo;10;1000;100,00;250,00\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := run(t, "summary", "--file", path, "--trend=false")
	require.NoError(t, err)
	assert.Contains(t, out, "ads.csv (1 records)")
	assert.Contains(t, out, "Promo")
	assert.Contains(t, out, "R$ 100,00")
	assert.Contains(t, out, "2,50x")
}

func TestSummaryRejectsBadInput(t *testing.T) {
	_, err := run(t, "summary", "--from", "2025-02-01", "--to", "2025-01-01")
	assert.ErrorIs(t, err, metrics.ErrInvalidQuery)

	path := filepath.Join(t.TempDir(), "ads.xls")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err = run(t, "summary", "--file", path)
	assert.ErrorContains(t, err, "unsupported file format")

	_, err = run(t, "summary", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestExportWritesEveryFormat(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "export", "--format", "csv,json,xlsx,pdf", "--dir", dir, "--name", "jan", "--campaign", "Campanha 1")
	require.NoError(t, err)

	for _, ext := range []string{"csv", "json", "xlsx", "pdf"} {
		info, err := os.Stat(filepath.Join(dir, "jan."+ext))
		require.NoError(t, err, ext)
		assert.Positive(t, info.Size(), ext)
		assert.Contains(t, out, "jan."+ext)
	}

	b, err := os.ReadFile(filepath.Join(dir, "jan.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 32)

	_, err = run(t, "export", "--format", "docx", "--dir", dir)
	assert.Error(t, err)
}

func TestSampleDump(t *testing.T) {
	out, err := run(t, "sample")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 156)
	assert.True(t, strings.HasPrefix(lines[0], "date,campaign,adset,ad,impressions"))

	path := filepath.Join(t.TempDir(), "sample.csv")
	_, err = run(t, "sample", "--out", path)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(b))
}

func TestConfigFileLimitsInput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "adsctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_upload_bytes: 10\nlog_level: debug\n"), 0o644))
	data := filepath.Join(dir, "ads.csv")
	require.NoError(t, os.WriteFile(data, []byte("campaign,clicks\nA,1\n"), 0o644))

	_, err := run(t, "summary", "--config", cfgPath, "--file", data)
	assert.ErrorContains(t, err, "limit is 10")
}
