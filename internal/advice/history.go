package advice

import "time"

// TryWindowDays is the fixed look-back window for repeat avoidance: a
// domain suggested inside the last 14 days is not suggested again while
// an alternative exists.
const TryWindowDays = 14

// TryRecord is one delivered suggestion: which domain was addressed on
// which calendar day. Only the date component of Date is meaningful.
type TryRecord struct {
	Date   time.Time `json:"date"`
	Domain Domain    `json:"domain"`
}

// TryHistory is the ordered (oldest first) sequence of recent tries. It is
// append-only; entries older than the look-back window are evicted on
// append, so a well-formed history never exceeds TryWindowDays entries.
type TryHistory []TryRecord

// Append adds rec and evicts every entry that falls outside the look-back
// window ending on rec's day. The result never holds more than
// TryWindowDays records.
func (h TryHistory) Append(rec TryRecord) TryHistory {
	out := append(append(TryHistory{}, h...), rec)
	out = out.WithinWindow(rec.Date)
	if len(out) > TryWindowDays {
		out = out[len(out)-TryWindowDays:]
	}
	return out
}

// WithinWindow returns the entries whose date falls inside the
// TryWindowDays-day window ending on asOf (inclusive). Order is preserved.
func (h TryHistory) WithinWindow(asOf time.Time) TryHistory {
	cutoff := dateOnly(asOf).AddDate(0, 0, -(TryWindowDays - 1))
	out := make(TryHistory, 0, len(h))
	for _, rec := range h {
		d := dateOnly(rec.Date)
		if !d.Before(cutoff) && !d.After(dateOnly(asOf)) {
			out = append(out, rec)
		}
	}
	return out
}

// Domains returns the distinct set of domains present in the history.
func (h TryHistory) Domains() map[Domain]bool {
	set := make(map[Domain]bool, len(h))
	for _, rec := range h {
		set[rec.Domain] = true
	}
	return set
}

// dateOnly truncates t to midnight in its own location. Callers supply
// already-localized timestamps; time zone handling is their responsibility.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
