// Package datetime provides year-month utilities used to tag simulated months
// with calendar dates.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// YearMonth is a calendar month without a day component.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(value string) (YearMonth, error) {
	t, err := time.Parse(DateTimeLayout, value)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q: %w", value, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// String formats the year-month using DateTimeLayout.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// AddMonths returns the year-month offset by the given number of months.
func (ym YearMonth) AddMonths(months int) YearMonth {
	index := ym.Year*constants.MonthsPerYear + int(ym.Month) - 1 + months
	year := floorDiv(index, constants.MonthsPerYear)
	return YearMonth{Year: year, Month: time.Month(index-year*constants.MonthsPerYear) + 1}
}

// CalendarYear returns the calendar year containing the simulated month m
// (1-based) of a loan starting at ym.
func (ym YearMonth) CalendarYear(m int) int {
	return ym.AddMonths(m - 1).Year
}

// BlockYear returns the 1-based 12-month block containing the simulated month m.
func BlockYear(m int) int {
	return (m + constants.MonthsPerYear - 1) / constants.MonthsPerYear
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
