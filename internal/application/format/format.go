// Package format renders timestamps and minor-unit amounts for display.
//
// Every function is pure: the same input, location and currency code always give
// the same output. Missing or unparseable input renders as Placeholder.
package format

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is rendered in place of missing values.
const Placeholder = "N/A"

// DefaultCurrency is used when a record carries no currency code.
const DefaultCurrency = "USD"

const (
	dateLayout     = "Jan 2, 2006"
	timeLayout     = "3:04 PM"
	dateTimeLayout = "Mon, Jan 2, 2006, 3:04 PM"
	dateOnlyLayout = "2006-01-02"
)

// isoLayouts are tried in order when parsing backend timestamps.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

var printer = message.NewPrinter(language.AmericanEnglish)

// Formatter formats values for one display time zone and default currency.
type Formatter struct {
	Loc      *time.Location
	Currency string
}

// New creates a Formatter. A nil location means UTC; an empty currency means USD.
func New(loc *time.Location, defaultCurrency string) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	if strings.TrimSpace(defaultCurrency) == "" {
		defaultCurrency = DefaultCurrency
	}
	return Formatter{Loc: loc, Currency: strings.ToUpper(defaultCurrency)}
}

// FormatDate renders the calendar date of an ISO string ("Sep 20, 2023") in the
// local time zone. Date-only input is rendered as-is without zone conversion.
func FormatDate(iso string) string {
	return New(time.Local, "").Date(iso)
}

// FormatTime renders hour and minute of an ISO timestamp in loc.
func FormatTime(iso string, loc *time.Location) string {
	return New(loc, "").Time(iso)
}

// FormatDateTime renders weekday, date and time of an ISO timestamp in loc.
func FormatDateTime(iso string, loc *time.Location) string {
	return New(loc, "").DateTime(iso)
}

// FormatAmount divides cents by 100 and renders it with the currency's symbol,
// grouping and fraction digits. An empty code means USD.
func FormatAmount(cents int64, code string) string {
	return New(nil, "").Amount(cents, code)
}

// Date renders the calendar date of an ISO string.
func (f Formatter) Date(iso string) string {
	if d, ok := parseDateOnly(iso); ok {
		return d.Format(dateLayout)
	}
	t, ok := ParseISO(iso)
	if !ok {
		return Placeholder
	}
	return t.In(f.Loc).Format(dateLayout)
}

// Time renders hour:minute of an ISO timestamp.
func (f Formatter) Time(iso string) string {
	t, ok := ParseISO(iso)
	if !ok {
		return Placeholder
	}
	return t.In(f.Loc).Format(timeLayout)
}

// DateTime renders weekday, date and time of an ISO timestamp.
func (f Formatter) DateTime(iso string) string {
	t, ok := ParseISO(iso)
	if !ok {
		return Placeholder
	}
	return t.In(f.Loc).Format(dateTimeLayout)
}

// TimeDate renders the calendar date of t in the display zone.
func (f Formatter) TimeDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.In(f.Loc).Format(dateLayout)
}

// TimeDateTime renders weekday, date and time of t in the display zone.
func (f Formatter) TimeDateTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.In(f.Loc).Format(dateTimeLayout)
}

// TimeClock renders hour:minute of t in the display zone.
func (f Formatter) TimeClock(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.In(f.Loc).Format(timeLayout)
}

// OptionalDateTime renders a nullable timestamp.
func (f Formatter) OptionalDateTime(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return f.TimeDateTime(*t)
}

// CalendarDate renders a date-only value without zone conversion.
func (f Formatter) CalendarDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(dateLayout)
}

// Amount renders minor units in the given currency, falling back to the
// formatter's default currency when code is empty.
func (f Formatter) Amount(cents int64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = f.Currency
	}
	if code == "" {
		code = DefaultCurrency
	}

	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return sign + code + " " + decimal(cents, 2)
	}
	scale, _ := currency.Standard.Rounding(unit)
	number := decimal(cents, scale)
	symbol := printer.Sprint(currency.Symbol(unit))
	if isAlphabetic(symbol) {
		return sign + symbol + " " + number
	}
	return sign + symbol + number
}

// ParseISO parses the timestamp layouts the backend emits.
func ParseISO(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, true
		}
	}
	if d, ok := parseDateOnly(iso); ok {
		return d, true
	}
	return time.Time{}, false
}

func parseDateOnly(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) != len(dateOnlyLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(dateOnlyLayout, s)
	return t, err == nil
}

// decimal renders non-negative minor units (hundredths) with scale fraction
// digits, rounding half up. Integer arithmetic keeps every digit exact.
func decimal(cents int64, scale int) string {
	whole, frac := cents/100, cents%100
	switch {
	case scale <= 0:
		if frac >= 50 {
			whole++
		}
		return printer.Sprintf("%d", whole)
	case scale == 1:
		tenths := (frac + 5) / 10
		if tenths == 10 {
			whole++
			tenths = 0
		}
		return printer.Sprintf("%d", whole) + "." + strconv.FormatInt(tenths, 10)
	}
	digits := strconv.FormatInt(frac, 10)
	if frac < 10 {
		digits = "0" + digits
	}
	return printer.Sprintf("%d", whole) + "." + digits + strings.Repeat("0", scale-2)
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
