package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	dataSheet     = "Dados"
	campaignSheet = "Campanhas"
)

func writeXLSX(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(campaignSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1877F2"}},
	})
	if err != nil {
		return err
	}

	if err := sheetHeader(f, dataSheet, header, bold); err != nil {
		return err
	}
	for i, r := range rows(in.Records) {
		vals := []any{
			r.Date, r.Campaign, r.AdSet, r.Ad,
			r.Impressions, r.Reach, r.Clicks, r.Messages, r.Spend, r.Revenue,
			r.CTR, r.CPC, r.CPM, r.ROAS, r.ROI, r.CPL,
		}
		if err := setRow(f, dataSheet, i+2, vals); err != nil {
			return err
		}
	}

	campHeader := []string{
		"campaign", "impressions", "reach", "clicks", "messages", "spend", "revenue",
		"ctr", "cpc", "cpm", "roas", "roi", "cpl",
	}
	if err := sheetHeader(f, campaignSheet, campHeader, bold); err != nil {
		return err
	}
	for i, c := range in.Campaigns {
		vals := []any{
			c.Key, c.Impressions, c.Reach, c.Clicks, c.Messages, c.Spend, c.Revenue,
			c.CTR, c.CPC, c.CPM, c.ROAS, c.ROI, c.CPL,
		}
		if err := setRow(f, campaignSheet, i+2, vals); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func sheetHeader(f *excelize.File, sheet string, cols []string, style int) error {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = c
	}
	if err := setRow(f, sheet, 1, vals); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &vals)
}
