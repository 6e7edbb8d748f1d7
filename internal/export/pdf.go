package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/AngelCh415/metaads-dashboard/internal/format"
)

var (
	headerColor = [3]int{24, 119, 242}
	titleColor  = [3]int{0, 51, 102}
	bodyColor   = [3]int{40, 40, 40}
)

// writePDF lays out a one-section KPI summary followed by the campaign table.
func writePDF(w io.Writer, in Input) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Gerado em "+in.GeneratedAt.Format("02/01/2006 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Dashboard de Desempenho de Campanhas"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyColor[0], bodyColor[1], bodyColor[2])
	period := "todo o período"
	if in.From != "" || in.To != "" {
		period = fmt.Sprintf("%s a %s", orDash(in.From), orDash(in.To))
	}
	src := in.Dataset.ID
	if in.Dataset.FileName != "" {
		src += " (" + in.Dataset.FileName + ")"
	}
	pdf.CellFormat(0, 8, tr("  Dados: "+src+"  |  Período: "+period), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	section(pdf, tr, "Indicadores")
	s := in.Summary
	kpis := [][2]string{
		{"Impressões", format.Int(s.Impressions)},
		{"Alcance", format.Int(s.Reach)},
		{"Cliques", format.Int(s.Clicks)},
		{"Mensagens", format.Int(s.Messages)},
		{"Investimento", format.Money(s.Spend)},
		{"Receita", format.Money(s.Revenue)},
		{"CTR", format.Percent(s.CTR)},
		{"CPC", format.Money(s.CPC)},
		{"CPM", format.Money(s.CPM)},
		{"CPL", format.Money(s.CPL)},
		{"ROAS", format.Ratio(s.ROAS) + "x"},
		{"ROI", format.Percent(s.ROI)},
	}
	pdf.SetFont("Arial", "", 10)
	for i, kv := range kpis {
		pdf.CellFormat(30, 7, tr(kv[0]), "", 0, "L", false, 0, "")
		ln := 0
		if i%2 == 1 {
			ln = 1
		}
		pdf.CellFormat(65, 7, tr(kv[1]), "", ln, "L", false, 0, "")
	}
	pdf.Ln(8)

	section(pdf, tr, "Campanhas")
	cols := []struct {
		title string
		width float64
	}{
		{"Campanha", 50}, {"Impr.", 22}, {"Cliques", 18}, {"Invest.", 26},
		{"Receita", 26}, {"CTR", 16}, {"ROAS", 14}, {"ROI", 18},
	}
	pdf.SetFont("Arial", "B", 9)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, tr(c.title), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, c := range in.Campaigns {
		vals := []string{
			truncate(c.Key, 30), format.Int(c.Impressions), format.Int(c.Clicks),
			format.Money(c.Spend), format.Money(c.Revenue), format.Percent(c.CTR),
			format.Ratio(c.ROAS), format.Percent(c.ROI),
		}
		for i, v := range vals {
			pdf.CellFormat(cols[i].width, 6, tr(v), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(titleColor[0], titleColor[1], titleColor[2])
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(7)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
	pdf.Ln(4)
	pdf.SetTextColor(bodyColor[0], bodyColor[1], bodyColor[2])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
