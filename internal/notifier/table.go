package notifier

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"SwingSentinel/internal/model"
)

// RenderTable renders the score breakdown of res as a terminal table.
func RenderTable(res *model.AnalysisResult) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	title := res.ProfileID
	if res.Symbol != "" {
		title = res.Symbol + " | " + title
	}
	t.SetTitle(title)

	if res.Status != model.StatusOK {
		t.AppendRow(table.Row{"insufficient data", res.Reason})
		return t.Render()
	}

	t.AppendHeader(table.Row{"Indicator", "Buy", "Sell", "Max", "Rules"})
	for _, name := range model.Indicators {
		sub, ok := res.Scores[name]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{name, fmt.Sprintf("%.1f", sub.Buy), fmt.Sprintf("%.1f", sub.Sell), fmt.Sprintf("%.0f", sub.Max), describeParts(sub.Parts)})
	}
	t.AppendFooter(table.Row{"Total", res.BuyTotal, res.SellTotal, "", ""})

	if last, ok := res.Last(); ok {
		t.SetCaption("%s close %.2f | buy: %s | sell: %s", last.Time.Format("2006-01-02"), last.Close, res.BuySignal, res.SellSignal)
	}
	return t.Render()
}

func describeParts(parts []model.ScorePart) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%s %s %+.1f", p.Side, p.Rule, p.Points)
	}
	return out
}
