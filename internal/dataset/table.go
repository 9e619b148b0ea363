package dataset

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source columns.
const (
	ColStartTime    = "Start Time"
	ColStartStation = "Start Station"
	ColEndStation   = "End Station"
	ColTripDuration = "Trip Duration"
	ColUserType     = "User Type"
	ColGender       = "Gender"
	ColBirthYear    = "Birth Year"
)

// Derived columns, computed once at load time.
const (
	ColMonth     = "month"
	ColDayOfWeek = "day_of_week"
	ColHour      = "hour"
)

// Schema is the set of columns a table carries. Reporters consult it
// instead of branching on the city.
type Schema map[string]bool

// Has reports whether the column is present.
func (s Schema) Has(col string) bool { return s[col] }

// Table is a filtered trip-record table. It is read-only once returned by
// the loader.
type Table struct {
	City   string
	Source string
	df     dataframe.DataFrame
	schema Schema
}

// NewTable wraps a dataframe. It is used by the loader and by tests that
// build tables in memory.
func NewTable(city, source string, df dataframe.DataFrame) *Table {
	s := Schema{}
	for _, n := range df.Names() {
		s[n] = true
	}
	return &Table{City: city, Source: source, df: df, schema: s}
}

// Len is the number of rows; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.df.Nrow()
}

// Schema returns the column capability set.
func (t *Table) Schema() Schema { return t.schema }

// Has reports whether the table carries col.
func (t *Table) Has(col string) bool { return t != nil && t.schema.Has(col) }

// Strings returns the column as strings, "" marking missing values.
func (t *Table) Strings(col string) ([]string, error) {
	s, err := t.column(col)
	if err != nil {
		return nil, err
	}
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v := strings.TrimSpace(e.String())
		if v == "NaN" {
			continue
		}
		out[i] = v
	}
	return out, nil
}

// Floats returns the column as numbers, NaN marking missing or
// non-numeric values.
func (t *Table) Floats(col string) ([]float64, error) {
	vals, err := t.Strings(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, perr := strconv.ParseFloat(v, 64)
		if v == "" || perr != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = f
	}
	return out, nil
}

// Ints returns the present values of an integer column such as a derived
// month or hour. Missing elements are skipped.
func (t *Table) Ints(col string) ([]int, error) {
	s, err := t.column(col)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v, err := e.Int()
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", col, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *Table) column(col string) (series.Series, error) {
	if !t.Has(col) {
		return series.Series{}, fmt.Errorf("column %q not available", col)
	}
	s := t.df.Col(col)
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("column %q: %w", col, s.Err)
	}
	return s, nil
}

// WriteRows renders rows [start, start+n) as an aligned table with a
// leading position column. It writes whatever remains when fewer than n
// rows are left and returns the number of rows written.
func (t *Table) WriteRows(w io.Writer, start, n int) (int, error) {
	end := start + n
	if end > t.Len() {
		end = t.Len()
	}
	if start >= end {
		return 0, nil
	}
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	sub := t.df.Subset(idx)
	if sub.Err != nil {
		return 0, fmt.Errorf("subset rows %d-%d: %w", start, end, sub.Err)
	}
	records := sub.Records()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(records[0], "\t"))
	for i, rec := range records[1:] {
		fmt.Fprintf(tw, "%d\t%s\n", start+i, strings.Join(rec, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return end - start, nil
}
