package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/AngelCh415/metaads-dashboard/internal/export"
	"github.com/AngelCh415/metaads-dashboard/internal/format"
	"github.com/AngelCh415/metaads-dashboard/internal/metrics"
)

const barWidth = 40

func renderSummary(w io.Writer, d metrics.Dashboard, trend bool) error {
	title := color.New(color.FgBlue, color.Bold).SprintFunc()
	src := d.Dataset.ID
	if d.Dataset.FileName != "" {
		src = d.Dataset.FileName
	}
	fmt.Fprintln(w, title(fmt.Sprintf("Campaign performance: %s (%d records)", src, d.Summary.Records)))

	kpis := pterm.TableData{
		{"Impressões", "Alcance", "Cliques", "Mensagens", "Investimento", "Receita"},
		{d.Display["impressions"], d.Display["reach"], d.Display["clicks"], d.Display["messages"], d.Display["spend"], d.Display["revenue"]},
		{"CTR", "CPC", "CPM", "CPL", "ROAS", "ROI"},
		{d.Display["ctr"], d.Display["cpc"], d.Display["cpm"], d.Display["cpl"], d.Display["roas"], signed(d.Summary.ROI, d.Display["roi"])},
	}
	out, err := pterm.DefaultTable.WithBoxed().WithData(kpis).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)

	rows := pterm.TableData{{"Campanha", "Investimento", "Receita", "ROAS", "CTR", "CPL", "ROI"}}
	for _, c := range d.Campaigns {
		rows = append(rows, []string{
			pterm.FgMagenta.Sprint(c.Key),
			format.Money(c.Spend),
			format.Money(c.Revenue),
			format.Ratio(c.ROAS) + "x",
			format.Percent(c.CTR),
			format.Money(c.CPL),
			signed(c.ROI, format.Percent(c.ROI)),
		})
	}
	out, err = pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(rows).
		Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)

	if !trend || len(d.Daily) == 0 {
		return nil
	}
	return renderTrend(w, d.Daily)
}

// renderTrend draws daily spend as bars scaled to the busiest day.
func renderTrend(w io.Writer, days []metrics.DailyPoint) error {
	max := 0.0
	for _, p := range days {
		if p.Spend > max {
			max = p.Spend
		}
	}
	if max == 0 {
		fmt.Fprintln(w, pterm.FgYellow.Sprint("No spend in this period"))
		return nil
	}

	data := pterm.TableData{{"Dia", "Investimento", ""}}
	for _, p := range days {
		bar := strings.Repeat("█", int(p.Spend/max*barWidth))
		data = append(data, []string{p.Date, format.Money(p.Spend), pterm.FgBlue.Sprint(bar)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, pterm.DefaultBox.WithTitle("Investimento diário").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(table))
	return nil
}

// signed colours a value green when positive and red when negative.
func signed(v float64, s string) string {
	switch {
	case v > 0:
		return color.New(color.FgGreen).Sprint(s)
	case v < 0:
		return color.New(color.FgRed).Sprint(s)
	}
	return s
}

func printSaved(w io.Writer, f export.Format, path string) {
	fmt.Fprintln(w, pterm.Success.Sprintf("%s report saved to %s", f, path))
}
