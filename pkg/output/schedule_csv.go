package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-simulator/pkg/loans"
)

// ScheduleCSVHeader lists the columns written by WriteScheduleCSV, in order.
var ScheduleCSVHeader = []string{
	"month",
	"year",
	"annual_rate",
	"payment",
	"remaining_term",
	"opening_balance",
	"balance_after_extra",
	"closing_balance",
	"interest",
	"principal_in_payment",
	"extra_planned",
	"extra_applied",
	"extra_accumulated_year",
	"year_cap",
	"extra_not_applied",
	"flags",
}

// flagSeparator joins the flags of a row inside the flags column.
const flagSeparator = "|"

// ErrInvalidScheduleCSV is returned when a delimited schedule cannot be parsed.
var ErrInvalidScheduleCSV = errors.New("invalid schedule csv")

// WriteScheduleCSV writes the header and one record per row. Floats use the
// shortest representation that parses back to the same value.
func WriteScheduleCSV(w io.Writer, rows []loans.ScheduleRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ScheduleCSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(scheduleRecord(row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ScheduleCSV returns the schedule as a CSV document.
func ScheduleCSV(rows []loans.ScheduleRow) (string, error) {
	var buf bytes.Buffer
	if err := WriteScheduleCSV(&buf, rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func scheduleRecord(row loans.ScheduleRow) []string {
	flags := make([]string, len(row.Flags))
	for i, flag := range row.Flags {
		flags[i] = string(flag)
	}

	return []string{
		strconv.Itoa(row.Month),
		strconv.Itoa(row.Year),
		formatFloat(row.AnnualRate),
		formatFloat(row.Payment),
		strconv.Itoa(row.RemainingTerm),
		formatFloat(row.OpeningBalance),
		formatFloat(row.BalanceAfterExtra),
		formatFloat(row.ClosingBalance),
		formatFloat(row.Interest),
		formatFloat(row.PrincipalInPayment),
		formatFloat(row.ExtraPlanned),
		formatFloat(row.ExtraApplied),
		formatFloat(row.ExtraAccumulatedYear),
		formatFloat(row.YearCap),
		formatFloat(row.ExtraNotApplied),
		strings.Join(flags, flagSeparator),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseScheduleCSV reads a schedule written by WriteScheduleCSV.
func ParseScheduleCSV(r io.Reader) ([]loans.ScheduleRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(ScheduleCSVHeader)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidScheduleCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrInvalidScheduleCSV, err)
	}
	for i, name := range ScheduleCSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q", ErrInvalidScheduleCSV, i+1, header[i], name)
		}
	}

	var rows []loans.ScheduleRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidScheduleCSV, line, err)
		}
		row, err := parseScheduleRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidScheduleCSV, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// recordParser accumulates the first conversion error across a record.
type recordParser struct {
	record []string
	err    error
}

func (p *recordParser) intAt(i int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.record[i])
	if err != nil {
		p.err = fmt.Errorf("%s: %w", ScheduleCSVHeader[i], err)
	}
	return v
}

func (p *recordParser) floatAt(i int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.record[i], 64)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", ScheduleCSVHeader[i], err)
	}
	return v
}

func parseScheduleRecord(record []string) (loans.ScheduleRow, error) {
	p := &recordParser{record: record}

	row := loans.ScheduleRow{
		Month:                p.intAt(0),
		Year:                 p.intAt(1),
		AnnualRate:           p.floatAt(2),
		Payment:              p.floatAt(3),
		RemainingTerm:        p.intAt(4),
		OpeningBalance:       p.floatAt(5),
		BalanceAfterExtra:    p.floatAt(6),
		ClosingBalance:       p.floatAt(7),
		Interest:             p.floatAt(8),
		PrincipalInPayment:   p.floatAt(9),
		ExtraPlanned:         p.floatAt(10),
		ExtraApplied:         p.floatAt(11),
		ExtraAccumulatedYear: p.floatAt(12),
		YearCap:              p.floatAt(13),
		ExtraNotApplied:      p.floatAt(14),
	}
	if p.err != nil {
		return loans.ScheduleRow{}, p.err
	}

	if flags := record[15]; flags != "" {
		for _, flag := range strings.Split(flags, flagSeparator) {
			row.Flags = append(row.Flags, loans.Flag(flag))
		}
	}

	return row, nil
}
