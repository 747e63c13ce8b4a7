package notifier

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
)

// FormatAnalysisReport formats one analysis result into a Telegram message.
func FormatAnalysisReport(res *model.AnalysisResult) string {
	var b strings.Builder
	symbol := html.EscapeString(res.Symbol)

	if res.Status != model.StatusOK {
		b.WriteString(fmt.Sprintf("⚠️ <b>%s</b> | %s\n", symbol, res.ProfileID))
		b.WriteString(fmt.Sprintf("Insufficient data: %s\n", html.EscapeString(res.Reason)))
		return b.String()
	}

	last, _ := res.Last()
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s | %s\n\n", symbol, res.ProfileID, last.Time.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %.2f\n", last.Close))
	b.WriteString(fmt.Sprintf("🟢 <b>Buy %d</b>: %s\n", res.BuyTotal, html.EscapeString(string(res.BuySignal))))
	b.WriteString(fmt.Sprintf("🔴 <b>Sell %d</b>: %s\n\n", res.SellTotal, html.EscapeString(string(res.SellSignal))))

	b.WriteString("📈 <b>Scores:</b>\n")
	for _, name := range model.Indicators {
		sub, ok := res.Scores[name]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: buy %.1f / sell %.1f (max %.0f)\n", name, sub.Buy, sub.Sell, sub.Max))
	}

	if sw := res.Swing; sw != nil && sw.Valid {
		b.WriteString(fmt.Sprintf("\n📐 <b>Swing:</b> %.2f → %.2f (%.1f%%)\n", sw.LowPrice, sw.HighPrice, sw.Ratio*100))
		for _, key := range sortedLevelKeys(sw.Levels) {
			b.WriteString(fmt.Sprintf("  %s: %.2f\n", key, sw.Levels[key]))
		}
	}

	if d := res.Diagnostics; d != nil {
		var notes []string
		if d.StopLossLevel > 0 {
			notes = append(notes, fmt.Sprintf("stop-loss level %.2f", d.StopLossLevel))
		}
		if d.MASlope < 0 {
			notes = append(notes, "trend average falling")
		}
		if d.MABroken {
			notes = append(notes, "closes below trend average")
		}
		if d.Passivation {
			notes = append(notes, "KD passivation")
		}
		if len(notes) > 0 {
			b.WriteString("\n⚠️ " + strings.Join(notes, "; ") + "\n")
		}
	}
	return b.String()
}

// FormatProfiles lists the registered profiles.
func FormatProfiles(profiles []*profile.Profile, defaultID string) string {
	var b strings.Builder
	b.WriteString("🧭 <b>Profiles</b>\n\n")
	for _, p := range profiles {
		marker := ""
		if p.ID == defaultID {
			marker = " (default)"
		}
		b.WriteString(fmt.Sprintf("<b>%s</b>%s: min %d bars, max score %.0f\n", html.EscapeString(p.ID), marker, p.MinBars, p.MaxTotal()))
		if p.Description != "" {
			b.WriteString("  " + html.EscapeString(p.Description) + "\n")
		}
	}
	return b.String()
}

// sortedLevelKeys orders level keys by ratio.
func sortedLevelKeys(levels map[string]float64) []string {
	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseFloat(keys[i], 64)
		b, _ := strconv.ParseFloat(keys[j], 64)
		return a < b
	})
	return keys
}
