/*
Package advice implements the deterministic core of the daily health
message pipeline: profile validation, per-domain metric scoring,
recommendation domain selection with a no-repeat window, and
request/response contract assembly and validation.

Everything in this package is pure and synchronous. Functions operate on
immutable inputs, never touch the network or the store, and may be called
concurrently across users without coordination.
*/
package advice

// Metric identifies one of the four scored health dimensions.
type Metric string

const (
	MetricSleep    Metric = "sleep"
	MetricHRV      Metric = "hrv"
	MetricRhythm   Metric = "rhythm"
	MetricActivity Metric = "activity"
)

// Domain is a topical category for a daily recommendation.
type Domain string

const (
	DomainSleep     Domain = "sleep"
	DomainMental    Domain = "mental"
	DomainFitness   Domain = "fitness"
	DomainEnergy    Domain = "energy"
	DomainBeauty    Domain = "beauty"
	DomainNutrition Domain = "nutrition"
)

// AllDomains lists every recommendation domain a profile may declare as an
// interest. Order matters only for display.
var AllDomains = []Domain{
	DomainSleep,
	DomainMental,
	DomainFitness,
	DomainEnergy,
	DomainBeauty,
	DomainNutrition,
}

// DomainLabels maps a domain tag to its display string. Presentation lives
// here, not on the Domain type itself, so domain logic never carries UI
// concerns.
var DomainLabels = map[Domain]string{
	DomainSleep:     "Sleep",
	DomainMental:    "Mental Balance",
	DomainFitness:   "Fitness",
	DomainEnergy:    "Energy",
	DomainBeauty:    "Beauty",
	DomainNutrition: "Nutrition",
}

// metricPriority fixes the tie-break order when several metrics share the
// lowest score: sleep beats hrv beats rhythm beats activity.
var metricPriority = []Metric{
	MetricSleep,
	MetricHRV,
	MetricRhythm,
	MetricActivity,
}

// eligibleDomains maps the weakest metric of the day to the recommendation
// domains allowed to address it. The slice order is the selection priority
// inside each entry.
var eligibleDomains = map[Metric][]Domain{
	MetricSleep:    {DomainSleep},
	MetricHRV:      {DomainMental, DomainSleep},
	MetricRhythm:   {DomainSleep},
	MetricActivity: {DomainFitness, DomainEnergy},
}

// Label returns the display string for d, or the raw tag when no label is
// registered.
func (d Domain) Label() string {
	if s, ok := DomainLabels[d]; ok {
		return s
	}
	return string(d)
}

// Valid reports whether d is one of the known recommendation domains.
func (d Domain) Valid() bool {
	_, ok := DomainLabels[d]
	return ok
}
