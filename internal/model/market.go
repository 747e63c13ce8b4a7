package model

import "time"

// Bar represents a single daily OHLCV candlestick.
type Bar struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the raw bars delivered for one instrument.
type PriceSeries struct {
	Symbol    string
	Bars      []Bar
	Source    string
	FetchedAt time.Time
}

// Closes extracts the closing prices of bars.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
