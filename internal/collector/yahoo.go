package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"SwingSentinel/internal/model"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// Gateway is a relay in front of the Yahoo chart API. URL holds a "{url}"
// placeholder replaced by the escaped chart URL; an empty URL calls Yahoo
// directly. Envelope gateways wrap the chart JSON as {"contents": "..."}.
type Gateway struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Envelope bool   `yaml:"envelope"`
}

// DefaultGateways lists the public relays tried in order, ending with a
// direct request.
func DefaultGateways() []Gateway {
	return []Gateway{
		{Name: "allorigins", URL: "https://api.allorigins.win/get?url={url}", Envelope: true},
		{Name: "corsproxy", URL: "https://corsproxy.io/?{url}"},
		{Name: "allorigins-raw", URL: "https://api.allorigins.win/raw?url={url}"},
		{Name: "direct"},
	}
}

// YahooFetcher implements Fetcher using the Yahoo Finance chart API through
// one gateway.
type YahooFetcher struct {
	Client   *http.Client
	Gateway  Gateway
	ChartURL string // chart endpoint prefix, overridable in tests
	now      func() time.Time
}

// NewYahooFetcher creates a fetcher that goes through gw.
func NewYahooFetcher(gw Gateway, proxyURL string, timeout time.Duration) *YahooFetcher {
	return &YahooFetcher{
		Client:   newHTTPClient(proxyURL, timeout),
		Gateway:  gw,
		ChartURL: yahooChartURL,
		now:      time.Now,
	}
}

// NewYahooFetchers creates one fetcher per gateway, preserving order.
func NewYahooFetchers(gateways []Gateway, proxyURL string, timeout time.Duration) []Fetcher {
	fetchers := make([]Fetcher, 0, len(gateways))
	for _, gw := range gateways {
		fetchers = append(fetchers, NewYahooFetcher(gw, proxyURL, timeout))
	}
	return fetchers
}

func (f *YahooFetcher) Name() string {
	if f.Gateway.Name == "" {
		return "yahoo"
	}
	return "yahoo/" + f.Gateway.Name
}

// Ticker maps a listed symbol to its Yahoo ticker: symbols without an
// exchange suffix are taken as Taiwan listings.
func Ticker(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".TW"
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) requestURL(symbol string) string {
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	chart := fmt.Sprintf("%s%s?period1=0&period2=%d&interval=1d",
		f.ChartURL, url.PathEscape(Ticker(symbol)), now().Unix())
	if f.Gateway.URL == "" {
		return chart
	}
	return strings.ReplaceAll(f.Gateway.URL, "{url}", url.QueryEscape(chart))
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(symbol), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}

	if f.Gateway.Envelope {
		var env struct {
			Contents string `json:"contents"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("yahoo decode envelope: %w", err)
		}
		if env.Contents != "" {
			body = []byte(env.Contents)
		}
	}

	bars, err := parseChart(body)
	if err != nil {
		return nil, err
	}
	return tail(bars, days), nil
}

func parseChart(body []byte) ([]model.Bar, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			continue // holidays and suspended sessions
		}
		bars = append(bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   deref(at(quote.Open, i)),
			High:   deref(at(quote.High, i)),
			Low:    deref(at(quote.Low, i)),
			Close:  *c,
			Volume: deref(at(quote.Volume, i)),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// deref maps a missing value to 0, which the normalizer repairs.
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
