// Package dataset resolves, parses and filters per-city trip files.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/bikeshare-cli/internal/filters"
	"github.com/KaramelBytes/bikeshare-cli/internal/logger"
	"github.com/KaramelBytes/bikeshare-cli/internal/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrFileUnavailable means no candidate path could be read and parsed.
	ErrFileUnavailable = errors.New("data file unavailable")
	// ErrTimestampUnparsable means the start-time column is missing or holds
	// a malformed value. Blank cells are not malformed.
	ErrTimestampUnparsable = errors.New("start time unparsable")
)

// missing is how gota spells a missing element.
const missing = "NaN"

var timeLayouts = []string{
	"2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339, "2006-01-02 15:04",
	"2006-01-02", "1/2/2006 15:04:05", "1/2/2006 15:04", "01/02/2006",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Loader reads city files from the fixed candidate locations.
type Loader struct {
	extraDirs []string
	log       logger.Logger
}

// NewLoader returns a loader that also searches extraDirs after the
// built-in candidate paths.
func NewLoader(extraDirs []string) *Loader {
	return &Loader{extraDirs: extraDirs, log: logger.Named("dataset")}
}

// FileName is the data file name for a canonical city token.
func FileName(city string) string { return city + ".csv" }

// Load reads the city's file, derives month, day_of_week and hour, and
// applies the selection's month and day predicates. The returned error
// wraps ErrFileUnavailable or ErrTimestampUnparsable.
func (l *Loader) Load(ctx context.Context, sel filters.Selection) (*Table, error) {
	df, path, err := l.read(ctx, sel.City)
	if err != nil {
		return nil, err
	}
	l.log.Debug(ctx, "data file loaded", logger.String("path", path), logger.Int("rows", df.Nrow()))

	df, err = derive(df)
	if err != nil {
		l.log.Warn(ctx, "error converting start time", logger.String("path", path), logger.Error(err))
		return nil, fmt.Errorf("%s: %w: %v", path, ErrTimestampUnparsable, err)
	}

	df, err = applyFilters(df, sel)
	if err != nil {
		return nil, err
	}
	return NewTable(sel.City, path, df), nil
}

func (l *Loader) read(ctx context.Context, city string) (dataframe.DataFrame, string, error) {
	for _, p := range utils.CandidatePaths(FileName(city), l.extraDirs...) {
		df, err := readCSV(p)
		if err == nil {
			return df, p, nil
		}
		if utils.IsNotExist(err) {
			l.log.Debug(ctx, "candidate path missing", logger.String("path", p))
			continue
		}
		l.log.Warn(ctx, "error reading data file", logger.String("path", p), logger.Error(err))
	}
	l.log.Warn(ctx, "could not find the data file", logger.String("city", city))
	return dataframe.DataFrame{}, "", fmt.Errorf("%s: %w", city, ErrFileUnavailable)
}

func readCSV(path string) (dataframe.DataFrame, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if header, ok := headerOnly(b); ok {
		return emptyFrame(header), nil
	}
	df := dataframe.ReadCSV(bytes.NewReader(b),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan"}),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse csv: %w", df.Err)
	}
	return df, nil
}

// headerOnly reports whether b holds a header record and nothing else.
func headerOnly(b []byte) ([]string, bool) {
	r := csv.NewReader(bytes.NewReader(b))
	header, err := r.Read()
	if err != nil {
		return nil, false
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return header, true
}

// emptyFrame is a zero-row frame carrying the given string columns.
func emptyFrame(names []string) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(names))
	for _, n := range names {
		cols = append(cols, series.New([]string{}, series.String, n))
	}
	return dataframe.New(cols...)
}

// derive appends the month, day_of_week and hour columns.
func derive(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !hasColumn(df, ColStartTime) {
		return df, fmt.Errorf("column %q not found", ColStartTime)
	}
	col := df.Col(ColStartTime)
	n := col.Len()
	if n == 0 {
		return df, nil
	}
	// Blank start times stay in the table with missing derived fields.
	months := make([]string, n)
	days := make([]string, n)
	hours := make([]string, n)
	for i := 0; i < n; i++ {
		e := col.Elem(i)
		if e.IsNA() || strings.TrimSpace(e.String()) == "" {
			months[i], days[i], hours[i] = missing, missing, missing
			continue
		}
		ts, err := parseTimestamp(e.String())
		if err != nil {
			return df, fmt.Errorf("row %d: %w", i, err)
		}
		months[i] = strconv.Itoa(int(ts.Month()))
		days[i] = ts.Weekday().String()
		hours[i] = strconv.Itoa(ts.Hour())
	}
	df = df.Mutate(series.New(months, series.Int, ColMonth)).
		Mutate(series.New(days, series.String, ColDayOfWeek)).
		Mutate(series.New(hours, series.Int, ColHour))
	if df.Err != nil {
		return df, df.Err
	}
	return df, nil
}

func applyFilters(df dataframe.DataFrame, sel filters.Selection) (dataframe.DataFrame, error) {
	if sel.Month != "" && sel.Month != filters.All && df.Nrow() > 0 {
		idx := filters.MonthIndex(sel.Month)
		if idx == 0 {
			return df, fmt.Errorf("unknown month %q", sel.Month)
		}
		df = df.Filter(dataframe.F{Colname: ColMonth, Comparator: series.Eq, Comparando: idx})
		if df.Err != nil {
			return df, fmt.Errorf("filter month: %w", df.Err)
		}
	}
	if sel.Day != "" && sel.Day != filters.All && df.Nrow() > 0 {
		df = df.Filter(dataframe.F{Colname: ColDayOfWeek, Comparator: series.Eq, Comparando: filters.Title(sel.Day)})
		if df.Err != nil {
			return df, fmt.Errorf("filter day: %w", df.Err)
		}
	}
	return df, nil
}

func hasColumn(df dataframe.DataFrame, col string) bool {
	for _, n := range df.Names() {
		if n == col {
			return true
		}
	}
	return false
}
