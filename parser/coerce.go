package parser

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wfm-planner/errors"
)

// Serial day numbers in this range are treated as spreadsheet dates.
const (
	minSerialDate = 20000
	maxSerialDate = 2958465 // 9999-12-31
)

// Spreadsheet serial day zero (accounts for the 1900 leap-year bug).
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2.1.2006", // DD.MM.YYYY
	"2/1/2006", // DD/MM/YYYY
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// ParseDate normalizes an import date cell to a calendar day.
// Accepts DD.MM.YYYY, DD/MM/YYYY, ISO dates and spreadsheet serial numbers.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, errors.ErrMissingDate
	}

	if n, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(n) || n <= minSerialDate || n > maxSerialDate {
			return time.Time{}, errors.ErrInvalidDate
		}
		return serialEpoch.AddDate(0, 0, int(math.Floor(n))), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.ErrInvalidDate
}

// CoerceInt keeps only the digits of raw, so thousands separators in either
// convention are tolerated. Unparseable input yields 0.
func CoerceInt(raw string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// CoerceFloat parses the leading number of raw, accepting a comma as the
// decimal separator ("87,5 %" is 87.5). Unparseable input yields 0.
func CoerceFloat(raw string) float64 {
	value := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)

	end := 0
	seenDot := false
scan:
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	d, err := decimal.NewFromString(value[:end])
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
