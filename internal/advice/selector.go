package advice

// SelectDomain picks today's recommendation domain from the day's scores and
// the recent try history. The algorithm is fixed:
//
//  1. Find the metric with the lowest score; ties resolve by the fixed
//     priority order sleep > hrv > rhythm > activity.
//  2. Map that metric to its eligible domains through the static table.
//  3. Exclude domains already used inside the look-back window; when every
//     eligible domain was recently used, fall back to the full eligible set
//     (repeating a domain beats producing nothing).
//  4. Return the first remaining domain in the table's listed order.
//
// SelectDomain is pure: identical scores and history always yield the
// identical domain.
func SelectDomain(scores Scores, history TryHistory) Domain {
	weakest := lowestMetric(scores)
	eligible := eligibleDomains[weakest]

	used := history.Domains()
	remaining := make([]Domain, 0, len(eligible))
	for _, d := range eligible {
		if !used[d] {
			remaining = append(remaining, d)
		}
	}
	if len(remaining) == 0 {
		remaining = eligible
	}
	return remaining[0]
}

// lowestMetric scans the metrics in priority order so that a strict "less
// than" comparison leaves the earlier metric the winner on ties.
func lowestMetric(scores Scores) Metric {
	weakest := metricPriority[0]
	lowest := scores.ByMetric(weakest)
	for _, m := range metricPriority[1:] {
		if v := scores.ByMetric(m); v < lowest {
			weakest = m
			lowest = v
		}
	}
	return weakest
}
