// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/format"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report is the simulated result of one named scenario.
type Report struct {
	Name   string           `json:"name"`
	Inputs loans.LoanInputs `json:"inputs"`
	Result loans.Result     `json:"result"`
}

// Render writes the reports in the given output format.
func Render(w io.Writer, outputFormat string, reports []Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, reports)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, reports)
	case constants.OutputFormatJSON:
		return JSONFormat(w, reports)
	}
	return fmt.Errorf("unsupported output format %s", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, reports []Report) {
	p := message.NewPrinter(language.English)
	for i, report := range reports {
		if i > 0 {
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", report.Name)
		writeSummary(w, report.Result.KPIs)

		start, hasStart := startYearMonth(report.Inputs)
		if hasStart {
			fmt.Fprintf(w, "Month | Date    | Year | Rate    | Payment     | Interest    | Principal   | Extra       | Balance       | Notes\n")
			fmt.Fprintf(w, "_____ | _______ | ____ | _______ | ___________ | ___________ | ___________ | ___________ | _____________ | _____\n")
		} else {
			fmt.Fprintf(w, "Month | Year | Rate    | Payment     | Interest    | Principal   | Extra       | Balance       | Notes\n")
			fmt.Fprintf(w, "_____ | ____ | _______ | ___________ | ___________ | ___________ | ___________ | _____________ | _____\n")
		}

		for _, row := range report.Result.Schedule {
			fmt.Fprintf(w, "%5d | ", row.Month)
			if hasStart {
				fmt.Fprintf(w, "%s | ", start.AddMonths(row.Month-1))
			}
			fmt.Fprintf(w, "%4d | %7s | ", row.Year, format.Percent(row.AnnualRate, 3))
			_, _ = p.Fprintf(w, "$%10.2f | $%10.2f | $%10.2f | $%10.2f | $%12.2f | %s\n",
				row.Payment,
				row.Interest,
				row.PrincipalInPayment,
				row.ExtraApplied,
				row.ClosingBalance,
				rowNotes(row),
			)
		}
	}
}

func writeSummary(w io.Writer, kpis loans.KPIs) {
	fmt.Fprintf(w, "Total interest: %s\n", format.Currency(kpis.TotalInterest))
	fmt.Fprintf(w, "Total extra applied: %s\n", format.Currency(kpis.TotalExtraApplied))
	fmt.Fprintf(w, "Total payments: %s\n", format.Currency(kpis.TotalPayments))
	fmt.Fprintf(w, "Total payments with extra: %s\n", format.Currency(kpis.TotalPaymentsWithExtra))
	fmt.Fprintf(w, "Cancellation month: %s\n", format.Month(kpis.CancellationMonth))
	fmt.Fprintf(w, "Years to cancellation: %s\n\n", format.Years(kpis.YearsToCancellation))
}

// startYearMonth returns the first calendar month of the loan when known.
func startYearMonth(inputs loans.LoanInputs) (datetime.YearMonth, bool) {
	if inputs.StartYearMonth == "" {
		return datetime.YearMonth{}, false
	}
	start, err := datetime.ParseYearMonth(inputs.StartYearMonth)
	if err != nil {
		return datetime.YearMonth{}, false
	}
	return start, true
}

func rowNotes(row loans.ScheduleRow) string {
	notes := make([]string, 0, len(row.Flags)+1)
	if row.ExtraNotApplied > constants.ExtraTolerance {
		notes = append(notes, fmt.Sprintf("extra not applied %s", format.Currency(row.ExtraNotApplied)))
	}
	for _, flag := range row.Flags {
		if flag == loans.FlagCappedExtra {
			continue
		}
		notes = append(notes, string(flag))
	}
	return strings.Join(notes, ",")
}

// CsvFormat outputs in comma-separated value format: the schedule columns of
// every scenario, prefixed with the scenario name.
func CsvFormat(w io.Writer, reports []Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"scenario"}, ScheduleCSVHeader...)); err != nil {
		return err
	}
	for _, report := range reports {
		for _, row := range report.Result.Schedule {
			if err := writer.Write(append([]string{report.Name}, scheduleRecord(row)...)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// jsonReport adds the convergence status to a report.
type jsonReport struct {
	Report
	Converged bool `json:"converged"`
}

// JSONFormat outputs the reports as an indented JSON array.
func JSONFormat(w io.Writer, reports []Report) error {
	out := make([]jsonReport, len(reports))
	for i, report := range reports {
		out[i] = jsonReport{Report: report, Converged: report.Result.Converged()}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
