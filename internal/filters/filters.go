// Package filters turns free-text answers into canonical city, month and
// day tokens.
package filters

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical tokens.
const (
	Chicago      = "chicago"
	NewYorkCity  = "new_york_city"
	Washington   = "washington"
	All          = "all"
	ModeMonth    = "month"
	ModeDay      = "day"
	ModeBoth     = "both"
	ModeNone     = "none"
	firstHalfEnd = 6
)

// Selection is the immutable result of one round of filter collection.
type Selection struct {
	City  string
	Month string
	Day   string
}

// Months are the canonical month names, January first.
var Months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// Days are the canonical weekday names, Monday first.
var Days = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Modes lists the accepted time-filter answers.
var Modes = []string{ModeMonth, ModeDay, ModeBoth, ModeNone}

var citySynonyms = map[string]string{
	"chicago":       Chicago,
	"chi":           Chicago,
	"c":             Chicago,
	"new york":      NewYorkCity,
	"new york city": NewYorkCity,
	"ny":            NewYorkCity,
	"nyc":           NewYorkCity,
	"washington":    Washington,
	"wa":            Washington,
	"dc":            Washington,
	"w":             Washington,
}

var titler = cases.Title(language.English)

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Title renders a canonical token for display, e.g. "new_york_city" -> "New York City".
func Title(token string) string {
	return titler.String(strings.ReplaceAll(token, "_", " "))
}

// Normalizer maps user input to canonical tokens.
type Normalizer struct {
	monthTable map[string]string
	dayTable   map[string]string
	lastMonth  int
}

// NewNormalizer builds the synonym tables. Month answers are limited to
// January-June unless fullYear is set.
func NewNormalizer(fullYear bool) *Normalizer {
	n := &Normalizer{
		monthTable: map[string]string{},
		dayTable:   map[string]string{},
		lastMonth:  firstHalfEnd,
	}
	if fullYear {
		n.lastMonth = len(Months)
	}
	for i, m := range Months[:n.lastMonth] {
		n.monthTable[m] = m
		n.monthTable[m[:3]] = m
		n.monthTable[strconv.Itoa(i+1)] = m
	}
	for i, d := range Days {
		n.dayTable[d] = d
		n.dayTable[d[:3]] = d
		n.dayTable[strconv.Itoa(i+1)] = d
	}
	return n
}

// City resolves a city answer; ok is false for unknown input.
func (n *Normalizer) City(in string) (string, bool) {
	c, ok := citySynonyms[clean(in)]
	return c, ok
}

// Mode resolves a time-filter mode answer.
func (n *Normalizer) Mode(in string) (string, bool) {
	m := clean(in)
	for _, v := range Modes {
		if v == m {
			return m, true
		}
	}
	return "", false
}

// Month resolves a month answer to its lowercase full name.
func (n *Normalizer) Month(in string) (string, bool) {
	m, ok := n.monthTable[clean(in)]
	return m, ok
}

// Day resolves a weekday answer to its lowercase full name.
func (n *Normalizer) Day(in string) (string, bool) {
	d, ok := n.dayTable[clean(in)]
	return d, ok
}

// MonthChoices is the human list of accepted months, e.g. "January, ..., or June".
func (n *Normalizer) MonthChoices() string {
	names := make([]string, n.lastMonth)
	for i, m := range Months[:n.lastMonth] {
		names[i] = Title(m)
	}
	return orList(names)
}

// LastMonth is the 1-based number of the last accepted month.
func (n *Normalizer) LastMonth() int { return n.lastMonth }

// MonthIndex returns the 1-based month number of a canonical month name, or 0.
func MonthIndex(month string) int {
	for i, m := range Months {
		if m == month {
			return i + 1
		}
	}
	return 0
}

// YesNo interprets a yes/no answer. ok is false for anything else.
func YesNo(in string) (yes bool, ok bool) {
	switch clean(in) {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	}
	return false, false
}

func orList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
}
