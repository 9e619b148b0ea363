// Package analysis computes and prints the descriptive trip reports.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KaramelBytes/bikeshare-cli/internal/dataset"
	"github.com/KaramelBytes/bikeshare-cli/internal/filters"
)

// ErrNoData marks a report skipped because the table was empty.
var ErrNoData = errors.New("no data available for the selected filters")

// ComputationError is a failure inside one report. It never stops the
// remaining reports from running.
type ComputationError struct {
	Report string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("error calculating %s statistics: %v", e.Report, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// Result is the outcome of one report.
type Result struct {
	Name    string
	Elapsed time.Duration
	Err     error
}

// OK reports whether the report ran to completion.
func (r Result) OK() bool { return r.Err == nil }

// Report is one named statistics section.
type Report struct {
	Name    string
	Heading string
	compute func(w io.Writer, t *dataset.Table) error
}

// Reports lists the sections in the order they are printed.
var Reports = []Report{
	{Name: "time", Heading: "Calculating The Most Frequent Times of Travel...", compute: timeStats},
	{Name: "station", Heading: "Calculating The Most Popular Stations and Trip...", compute: stationStats},
	{Name: "trip duration", Heading: "Calculating Trip Duration...", compute: durationStats},
	{Name: "user", Heading: "Calculating User Stats...", compute: userStats},
}

// DemographicCities carry gender and birth-year columns in their published data.
var DemographicCities = map[string]bool{
	filters.Chicago:     true,
	filters.NewYorkCity: true,
}

const rule = "----------------------------------------"

// Run prints one report for t. An empty or nil table yields a notice and
// ErrNoData; a failure or panic inside the computation is printed and
// returned as a *ComputationError.
func (r Report) Run(w io.Writer, t *dataset.Table) (res Result) {
	res.Name = r.Name
	if t.Len() == 0 {
		fmt.Fprintln(w, "No data available for the selected filters.")
		res.Err = ErrNoData
		return res
	}

	fmt.Fprintf(w, "\n%s\n\n", r.Heading)
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Err = &ComputationError{Report: r.Name, Err: fmt.Errorf("panic: %v", p)}
			fmt.Fprintln(w, capitalize(res.Err.Error()))
		}
		res.Elapsed = time.Since(start)
		fmt.Fprintf(w, "\nThis took %.2f seconds.\n%s\n", res.Elapsed.Seconds(), rule)
	}()

	if err := r.compute(w, t); err != nil {
		res.Err = &ComputationError{Report: r.Name, Err: err}
		fmt.Fprintln(w, capitalize(res.Err.Error()))
	}
	return res
}

// RunAll prints every report in order and returns their results.
func RunAll(w io.Writer, t *dataset.Table) []Result {
	out := make([]Result, 0, len(Reports))
	for _, r := range Reports {
		out = append(out, r.Run(w, t))
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func timeStats(w io.Writer, t *dataset.Table) error {
	months, err := t.Ints(dataset.ColMonth)
	if err != nil {
		return err
	}
	if m, ok := Mode(months); ok {
		if m < 1 || m > len(filters.Months) {
			return fmt.Errorf("month %d out of range", m)
		}
		fmt.Fprintf(w, "Most Common Month: %s\n", filters.Title(filters.Months[m-1]))
	}

	days, err := t.Strings(dataset.ColDayOfWeek)
	if err != nil {
		return err
	}
	if d, ok := Mode(nonEmpty(days)); ok {
		fmt.Fprintf(w, "Most Common Day: %s\n", d)
	}

	hours, err := t.Ints(dataset.ColHour)
	if err != nil {
		return err
	}
	if h, ok := Mode(hours); ok {
		fmt.Fprintf(w, "Most Common Start Hour: %d:00\n", h)
	}
	return nil
}

func stationStats(w io.Writer, t *dataset.Table) error {
	var starts, ends []string
	var err error
	if t.Has(dataset.ColStartStation) {
		if starts, err = t.Strings(dataset.ColStartStation); err != nil {
			return err
		}
	}
	if t.Has(dataset.ColEndStation) {
		if ends, err = t.Strings(dataset.ColEndStation); err != nil {
			return err
		}
	}

	printMode(w, "Most Commonly Used Start Station", "Start station", starts)
	printMode(w, "Most Commonly Used End Station", "End station", ends)

	var trips []string
	if starts != nil && ends != nil {
		trips = make([]string, len(starts))
		for i := range starts {
			if starts[i] != "" && ends[i] != "" {
				trips[i] = starts[i] + " to " + ends[i]
			}
		}
	}
	printMode(w, "Most Frequent Trip", "Trip", trips)
	return nil
}

func printMode(w io.Writer, label, subject string, vals []string) {
	if v, ok := Mode(nonEmpty(vals)); ok {
		fmt.Fprintf(w, "%s: %s\n", label, v)
		return
	}
	fmt.Fprintf(w, "%s data not available for this dataset.\n", subject)
}

func durationStats(w io.Writer, t *dataset.Table) error {
	if !t.Has(dataset.ColTripDuration) {
		fmt.Fprintln(w, "No valid trip duration data available.")
		return nil
	}
	raw, err := t.Floats(dataset.ColTripDuration)
	if err != nil {
		return err
	}
	vals := finite(raw)
	if len(vals) == 0 {
		fmt.Fprintln(w, "No valid trip duration data available.")
		return nil
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	fmt.Fprintf(w, "Total Travel Time: %s\n", FormatSeconds(total))
	fmt.Fprintf(w, "Average Travel Time: %s\n", FormatSeconds(total/float64(len(vals))))
	return nil
}

func userStats(w io.Writer, t *dataset.Table) error {
	if t.Has(dataset.ColUserType) {
		types, err := t.Strings(dataset.ColUserType)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "Counts of User Types:")
		for _, c := range ValueCounts(nonEmpty(types)) {
			fmt.Fprintf(w, "  %s: %d\n", c.Value, c.Count)
		}
	} else {
		fmt.Fprintln(w, "User type data not available for this dataset.")
	}

	demographic := DemographicCities[t.City]
	if err := genderStats(w, t, demographic); err != nil {
		return err
	}
	return birthYearStats(w, t, demographic)
}

func genderStats(w io.Writer, t *dataset.Table, demographic bool) error {
	if !demographic || !t.Has(dataset.ColGender) {
		fmt.Fprintln(w, "\nGender data not available for this dataset.")
		return nil
	}
	raw, err := t.Strings(dataset.ColGender)
	if err != nil {
		return err
	}
	genders := nonEmpty(raw)
	if len(genders) == 0 {
		fmt.Fprintln(w, "\nNo gender data available")
		return nil
	}
	fmt.Fprintln(w, "\nCounts of Gender:")
	for _, c := range ValueCounts(genders) {
		fmt.Fprintf(w, "  %s: %d\n", c.Value, c.Count)
	}
	return nil
}

func birthYearStats(w io.Writer, t *dataset.Table, demographic bool) error {
	if !demographic || !t.Has(dataset.ColBirthYear) {
		fmt.Fprintln(w, "\nBirth year data not available for this dataset.")
		return nil
	}
	raw, err := t.Floats(dataset.ColBirthYear)
	if err != nil {
		return err
	}
	years := finite(raw)
	if len(years) == 0 {
		fmt.Fprintln(w, "\nNo valid birth year data available")
		return nil
	}
	lo, hi := years[0], years[0]
	for _, y := range years[1:] {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	common, _ := Mode(years)
	fmt.Fprintf(w, "\nEarliest Birth Year: %d\n", int(lo))
	fmt.Fprintf(w, "Most Recent Birth Year: %d\n", int(hi))
	fmt.Fprintf(w, "Most Common Birth Year: %d\n", int(common))
	return nil
}
