package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/AngelCh415/metaads-dashboard/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, use CSV or Excel (.xlsx)")
	ErrNoRows            = errors.New("file has no data rows")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidDate       = errors.New("invalid date")
)

// Parser turns an uploaded CSV or XLSX file into records. Now supplies the
// date used when the file has no date column.
type Parser struct {
	Now func() time.Time
}

func (p Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Parse picks the reader from the file name extension.
func (p Parser) Parse(name string, data []byte) ([]models.Record, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx":
		rows, err = readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	return p.records(rows)
}

func readCSV(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// decodeText strips a byte-order mark and converts Windows-1252 exports
// (common from Excel) to UTF-8.
func decodeText(b []byte) ([]byte, error) {
	var t transform.Transformer = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if !hasBOM(b) && !utf8.Valid(b) {
		t = charmap.Windows1252.NewDecoder()
	}
	out, _, err := transform.Bytes(t, b)
	return out, err
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(b, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(b, []byte{0xFE, 0xFF})
}

// sniffDelimiter prefers ';' when the header line has more of them than ','.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func (p Parser) records(rows [][]string) ([]models.Record, error) {
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	idx := mapHeader(rows[0])
	today := models.Day(p.now())

	out := make([]models.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec, err := record(row, idx, today)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

// record reads one data row. Columns absent from the header, and empty cells,
// take the back-fill defaults.
func record(row []string, idx map[column]int, today time.Time) (models.Record, error) {
	cell := func(c column) string {
		i, ok := idx[c]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	text := func(c column) string {
		if v := cell(c); v != "" {
			return v
		}
		return NotSpecified
	}

	rec := models.Record{
		Date:     today,
		Campaign: text(colCampaign),
		AdSet:    text(colAdSet),
		Ad:       text(colAd),
	}
	if v := cell(colDate); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return rec, fmt.Errorf("column %q: %w", colDate, err)
		}
		rec.Date = d
	}

	counts := []struct {
		c   column
		dst *int64
	}{
		{colImpressions, &rec.Impressions},
		{colReach, &rec.Reach},
		{colClicks, &rec.Clicks},
		{colMessages, &rec.Messages},
	}
	for _, f := range counts {
		n, err := parseNumber(cell(f.c))
		if err != nil {
			return rec, fmt.Errorf("column %q: %w", f.c, err)
		}
		n = math.Round(maxf(n))
		if n >= maxCount {
			return rec, fmt.Errorf("column %q: %w: %q out of range", f.c, ErrInvalidNumber, cell(f.c))
		}
		*f.dst = int64(n)
	}

	money := []struct {
		c   column
		dst *float64
	}{
		{colSpend, &rec.Spend},
		{colRevenue, &rec.Revenue},
	}
	for _, f := range money {
		n, err := parseNumber(cell(f.c))
		if err != nil {
			return rec, fmt.Errorf("column %q: %w", f.c, err)
		}
		*f.dst = maxf(n)
	}
	return rec, nil
}

// parseNumber accepts "1234.5", "1,234.50", "1.234,50" and "R$ 12,90". The
// last separator is the decimal one; a single ',' alone is decimal.
func parseNumber(s string) (float64, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.NewReplacer(" ", "", " ", "").Replace(s)
	if s == "" || s == "-" {
		return 0, nil
	}

	commas, dots := strings.Count(s, ","), strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return f, nil
}

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
	"01-02-06",
}

// parseDate reads ISO and Brazilian (dd/mm/yyyy) dates, and Excel serial
// numbers left unformatted in a sheet.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Day(t), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f < 2958466 {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return models.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// counters at or above 2^63 do not fit an int64
const maxCount = float64(math.MaxInt64)

func maxf(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
