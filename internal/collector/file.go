package collector

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"SwingSentinel/internal/model"
)

// FileFetcher implements Fetcher over local exports named
// <Dir>/<SYMBOL>.csv, .json or .parquet, tried in that order.
type FileFetcher struct {
	Dir string
}

func NewFileFetcher(dir string) *FileFetcher { return &FileFetcher{Dir: dir} }

func (f *FileFetcher) Name() string { return "file" }

var fileExtensions = []string{".csv", ".json", ".parquet"}

func (f *FileFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := strings.ToUpper(strings.TrimSpace(symbol))
	for _, ext := range fileExtensions {
		path := filepath.Join(f.Dir, base+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		bars, err := ReadBarsFile(path)
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("file %s: %w", path, ErrNoData)
		}
		return tail(bars, days), nil
	}
	return nil, fmt.Errorf("file: no export for %s in %s: %w", base, f.Dir, ErrNoData)
}

// ReadBarsFile decodes a bar export, choosing the format from the extension.
func ReadBarsFile(path string) ([]model.Bar, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer fh.Close()
		return ReadCSV(fh)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var bars []model.Bar
		if err := json.Unmarshal(data, &bars); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return bars, nil
	case ".parquet":
		rows, err := parquet.ReadFile[parquetBar](path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		bars := make([]model.Bar, len(rows))
		for i, r := range rows {
			bars[i] = r.bar()
		}
		return bars, nil
	default:
		return nil, fmt.Errorf("unsupported bar file %q (use .csv, .json or .parquet)", path)
	}
}

// parquetBar is the on-disk row of a parquet export.
type parquetBar struct {
	Timestamp int64   `parquet:"t"`
	Open      float64 `parquet:"o"`
	High      float64 `parquet:"h"`
	Low       float64 `parquet:"l"`
	Close     float64 `parquet:"c"`
	Volume    float64 `parquet:"v"`
}

func (r parquetBar) bar() model.Bar {
	return model.Bar{
		Time:   time.Unix(r.Timestamp, 0).UTC(),
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.Volume,
	}
}

// WriteParquet stores bars as a parquet export readable by FileFetcher.
func WriteParquet(path string, bars []model.Bar) error {
	rows := make([]parquetBar, len(bars))
	for i, b := range bars {
		rows[i] = parquetBar{
			Timestamp: b.Time.Unix(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return parquet.WriteFile(path, rows)
}

// WriteBarsFile stores bars in the format named by the extension of path,
// the inverse of ReadBarsFile.
func WriteBarsFile(path string, bars []model.Bar) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		fh, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(fh, bars); err != nil {
			fh.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		return fh.Close()
	case ".json":
		data, err := json.MarshalIndent(bars, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return os.WriteFile(path, data, 0o644)
	case ".parquet":
		if err := WriteParquet(path, bars); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported bar file %q (use .csv, .json or .parquet)", path)
	}
}

var csvDateLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339}

// ReadCSV decodes rows of date,open,high,low,close[,volume] with a header
// line. Dates may also be unix seconds.
func ReadCSV(r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"date", "close"} {
		if _, ok := cols[need]; !ok {
			return nil, fmt.Errorf("csv: missing %q column", need)
		}
	}

	var bars []model.Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		t, err := ParseDate(field(rec, cols, "date"))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		bars = append(bars, model.Bar{
			Time:   t,
			Open:   number(field(rec, cols, "open")),
			High:   number(field(rec, cols, "high")),
			Low:    number(field(rec, cols, "low")),
			Close:  number(field(rec, cols, "close")),
			Volume: number(field(rec, cols, "volume")),
		})
	}
	return bars, nil
}

// WriteCSV is the inverse of ReadCSV.
func WriteCSV(w io.Writer, bars []model.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		if err := cw.Write([]string{
			b.Time.UTC().Format("2006-01-02"),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			floatStr(b.Volume),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// number parses a price cell; blanks and garbage become NaN for the
// normalizer to repair or drop.
func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nan
	}
	return v
}

// ParseDate accepts 2006-01-02, 2006/01/02, RFC 3339 or unix seconds.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
