package dataset

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/bikeshare-cli/internal/filters"
)

// 2017-03-06 is a Monday, 2017-03-10 a Friday, 2017-01-02 a Monday.
var chicagoRows = []string{
	"Start Time,End Time,Trip Duration,Start Station,End Station,User Type,Gender,Birth Year",
	"2017-03-06 08:05:00,2017-03-06 08:15:00,600,Clark St,State St,Subscriber,Male,1985",
	"2017-03-06 08:45:00,2017-03-06 09:00:00,900,Clark St,Lake St,Subscriber,Female,1990",
	"2017-03-10 17:10:00,2017-03-10 17:20:00,600,State St,Clark St,Customer,,",
	"2017-01-02 17:30:00,2017-01-02 17:31:05,65,Clark St,State St,Subscriber,Male,1985",
	"2017-06-14 23:59:00,2017-06-15 00:10:00,,Lake St,Clark St,Customer,,",
}

func writeCity(t *testing.T, dir, city string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, city+".csv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func load(t *testing.T, l *Loader, month, day string) *Table {
	t.Helper()
	tbl, err := l.Load(context.Background(), filters.Selection{City: filters.Chicago, Month: month, Day: day})
	if err != nil {
		t.Fatalf("load %s/%s: %v", month, day, err)
	}
	return tbl
}

func TestLoadUnfilteredKeepsEveryRow(t *testing.T) {
	dir := t.TempDir()
	writeCity(t, dir, filters.Chicago, chicagoRows)
	tbl := load(t, NewLoader([]string{dir}), filters.All, filters.All)

	if tbl.Len() != len(chicagoRows)-1 {
		t.Fatalf("rows = %d, want %d", tbl.Len(), len(chicagoRows)-1)
	}
	for _, col := range []string{ColMonth, ColDayOfWeek, ColHour, ColGender, ColBirthYear} {
		if !tbl.Has(col) {
			t.Errorf("missing column %q", col)
		}
	}
	hours, err := tbl.Ints(ColHour)
	if err != nil {
		t.Fatalf("hours: %v", err)
	}
	if hours[4] != 23 {
		t.Errorf("hour of last row = %d, want 23", hours[4])
	}
}

func TestLoadFilters(t *testing.T) {
	dir := t.TempDir()
	writeCity(t, dir, filters.Chicago, chicagoRows)
	l := NewLoader([]string{dir})

	march := load(t, l, "march", filters.All)
	months, _ := march.Ints(ColMonth)
	if len(months) != 3 {
		t.Fatalf("march rows = %d, want 3", len(months))
	}
	for _, m := range months {
		if m != 3 {
			t.Fatalf("unexpected month %d", m)
		}
	}

	monday := load(t, l, filters.All, "monday")
	if monday.Len() != 3 {
		t.Fatalf("monday rows = %d, want 3", monday.Len())
	}

	both := load(t, l, "march", "monday")
	days, _ := both.Strings(ColDayOfWeek)
	if len(days) != 2 {
		t.Fatalf("march+monday rows = %d, want 2", len(days))
	}
	for _, d := range days {
		if d != "Monday" {
			t.Fatalf("unexpected day %q", d)
		}
	}

	none := load(t, l, "february", filters.All)
	if none.Len() != 0 {
		t.Fatalf("february rows = %d, want 0", none.Len())
	}
}

func TestLoadCandidatePriority(t *testing.T) {
	root := t.TempDir()
	work := filepath.Join(root, "work")
	if err := os.MkdirAll(filepath.Join(work, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	// ../data/ has the full file; data/ has a single row and must win.
	writeCity(t, filepath.Join(root, "data"), filters.Chicago, chicagoRows)
	writeCity(t, filepath.Join(work, "data"), filters.Chicago, chicagoRows[:2])
	chdir(t, work)

	tbl := load(t, NewLoader(nil), filters.All, filters.All)
	if tbl.Len() != 1 {
		t.Fatalf("rows = %d, want 1 from data/", tbl.Len())
	}
	if tbl.Source != filepath.Join("data", "chicago.csv") {
		t.Fatalf("source = %q", tbl.Source)
	}

	// Removing data/ falls through to ../data/.
	if err := os.Remove(filepath.Join(work, "data", "chicago.csv")); err != nil {
		t.Fatal(err)
	}
	tbl = load(t, NewLoader(nil), filters.All, filters.All)
	if tbl.Len() != len(chicagoRows)-1 {
		t.Fatalf("rows = %d, want fallback to ../data/", tbl.Len())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	l := NewLoader(nil)
	ctx := context.Background()

	_, err := l.Load(ctx, filters.Selection{City: filters.Washington, Month: filters.All, Day: filters.All})
	if !errors.Is(err, ErrFileUnavailable) {
		t.Fatalf("missing file: got %v", err)
	}

	writeCity(t, dir, filters.Washington, []string{
		"Start Time,Trip Duration",
		"not a date,10",
	})
	_, err = l.Load(ctx, filters.Selection{City: filters.Washington, Month: filters.All, Day: filters.All})
	if !errors.Is(err, ErrTimestampUnparsable) {
		t.Fatalf("bad timestamp: got %v", err)
	}

	writeCity(t, dir, filters.NewYorkCity, []string{
		"Trip Duration,User Type",
		"10,Subscriber",
	})
	_, err = l.Load(ctx, filters.Selection{City: filters.NewYorkCity, Month: filters.All, Day: filters.All})
	if !errors.Is(err, ErrTimestampUnparsable) {
		t.Fatalf("missing start time column: got %v", err)
	}
}

func TestTableAccessors(t *testing.T) {
	dir := t.TempDir()
	writeCity(t, dir, filters.Chicago, chicagoRows)
	tbl := load(t, NewLoader([]string{dir}), filters.All, filters.All)

	genders, err := tbl.Strings(ColGender)
	if err != nil {
		t.Fatal(err)
	}
	if genders[0] != "Male" || genders[2] != "" {
		t.Fatalf("genders = %q", genders)
	}
	durations, err := tbl.Floats(ColTripDuration)
	if err != nil {
		t.Fatal(err)
	}
	if durations[0] != 600 || !math.IsNaN(durations[4]) {
		t.Fatalf("durations = %v", durations)
	}
	if _, err := tbl.Strings("Nope"); err == nil {
		t.Fatal("expected error for unknown column")
	}

	var buf bytes.Buffer
	n, err := tbl.WriteRows(&buf, 3, 5)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("wrote %d rows, want 2", n)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "3 ") || !strings.Contains(lines[2], "Lake St") {
		t.Fatalf("unexpected page:\n%s", buf.String())
	}
	if n, _ := tbl.WriteRows(&buf, 5, 5); n != 0 {
		t.Fatalf("past the end wrote %d rows", n)
	}
}

func TestLoadBlankStartTimeKeepsRow(t *testing.T) {
	dir := t.TempDir()
	writeCity(t, dir, filters.Chicago, []string{
		"Start Time,Trip Duration,Start Station",
		"2017-06-21 08:36:34,10,Clark St",
		",20,State St",
		"2017-06-22 09:00:00,30,Clark St",
	})
	l := NewLoader([]string{dir})

	tbl := load(t, l, filters.All, filters.All)
	if tbl.Len() != 3 {
		t.Fatalf("rows = %d, want 3", tbl.Len())
	}
	months, err := tbl.Ints(ColMonth)
	if err != nil {
		t.Fatalf("months: %v", err)
	}
	if len(months) != 2 || months[0] != 6 || months[1] != 6 {
		t.Fatalf("months = %v, want the two present values", months)
	}
	hours, err := tbl.Ints(ColHour)
	if err != nil {
		t.Fatalf("hours: %v", err)
	}
	if len(hours) != 2 || hours[0] != 8 || hours[1] != 9 {
		t.Fatalf("hours = %v", hours)
	}
	days, err := tbl.Strings(ColDayOfWeek)
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if days[0] != "Wednesday" || days[1] != "" || days[2] != "Thursday" {
		t.Fatalf("days = %q", days)
	}

	// The blank row matches no month or day predicate.
	if june := load(t, l, "june", filters.All); june.Len() != 2 {
		t.Fatalf("june rows = %d, want 2", june.Len())
	}
	if thursday := load(t, l, filters.All, "thursday"); thursday.Len() != 1 {
		t.Fatalf("thursday rows = %d, want 1", thursday.Len())
	}
}

func TestLoadHeaderOnlyFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeCity(t, dir, filters.Chicago, []string{"Start Time,Trip Duration"})

	for _, month := range []string{filters.All, "march"} {
		tbl := load(t, NewLoader([]string{dir}), month, "monday")
		if tbl.Len() != 0 {
			t.Fatalf("%s: rows = %d, want 0", month, tbl.Len())
		}
		if !tbl.Has(ColTripDuration) {
			t.Fatalf("%s: header columns not kept", month)
		}
	}
}
