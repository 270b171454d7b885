package loans

import (
	"github.com/google/uuid"
)

// MonthExtra is the aggregated extra payment planned for one loan month.
type MonthExtra struct {
	Amount float64
	Mode   ExtraMode
}

// GroupExtraPayments sums the planned extra payments per month. When a month
// mixes modes, ReducePayment wins.
func GroupExtraPayments(entries []ExtraPaymentEntry) map[int]MonthExtra {
	grouped := make(map[int]MonthExtra, len(entries))
	for _, entry := range entries {
		if entry.Month < 1 {
			continue
		}
		existing, ok := grouped[entry.Month]
		if !ok {
			grouped[entry.Month] = MonthExtra{Amount: entry.Amount, Mode: effectiveMode(entry.Mode)}
			continue
		}
		existing.Amount += entry.Amount
		if effectiveMode(entry.Mode) == ReducePayment {
			existing.Mode = ReducePayment
		}
		grouped[entry.Month] = existing
	}
	return grouped
}

// effectiveMode treats anything but an explicit ReduceTerm as ReducePayment.
func effectiveMode(mode ExtraMode) ExtraMode {
	if mode == ReduceTerm {
		return ReduceTerm
	}
	return ReducePayment
}

// EnsureEntryIDs returns a copy of entries where every entry without an ID has
// been assigned a random UUID.
func EnsureEntryIDs(entries []ExtraPaymentEntry) []ExtraPaymentEntry {
	out := make([]ExtraPaymentEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
