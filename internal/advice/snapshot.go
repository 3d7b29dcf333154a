package advice

import "time"

/* =================================================================================
							DAILY HEALTH SNAPSHOT
	One snapshot per calendar day, produced by the external health-data
	collaborator and immutable once constructed for that day. Optional
	sections are pointers; a nil section means the collaborator had no
	data for it.
=================================================================================*/

// SleepSummary captures last night's sleep as reported by the health
// collaborator.
type SleepSummary struct {
	Bedtime         time.Time `json:"bedtime"`
	WakeTime        time.Time `json:"wakeTime"`
	DurationMinutes int       `json:"durationMinutes"`
	DeepMinutes     int       `json:"deepMinutes"`
	REMMinutes      int       `json:"remMinutes"`
	Awakenings      int       `json:"awakenings"`
}

// MorningVitals holds the resting measurements taken after waking.
type MorningVitals struct {
	RestingHeartRate int     `json:"restingHeartRate"`
	HRV              float64 `json:"hrv"`
}

// DayActivity summarizes yesterday's movement.
type DayActivity struct {
	Steps         int `json:"steps"`
	ActiveMinutes int `json:"activeMinutes"`
}

// WeekTrends carries the user's own 7-day trailing averages. Scores are
// always computed against these, never against a population norm.
type WeekTrends struct {
	SleepHours float64 `json:"sleepHours"`
	HRV        float64 `json:"hrv"`
	Steps      float64 `json:"steps"`
}

// Scores holds the four bounded domain scores for a day, each in [0,100].
type Scores struct {
	Sleep    int `json:"sleep"`
	HRV      int `json:"hrv"`
	Rhythm   int `json:"rhythm"`
	Activity int `json:"activity"`
}

// ByMetric returns the score for the given metric.
func (s Scores) ByMetric(m Metric) int {
	switch m {
	case MetricSleep:
		return s.Sleep
	case MetricHRV:
		return s.HRV
	case MetricRhythm:
		return s.Rhythm
	default:
		return s.Activity
	}
}

// InBounds reports whether every score sits inside [0,100].
func (s Scores) InBounds() bool {
	for _, m := range metricPriority {
		if v := s.ByMetric(m); v < 0 || v > MaxScore {
			return false
		}
	}
	return true
}

// RhythmStability describes how consistent the user's recent sleep and
// activity timing has been.
type RhythmStability struct {
	Status     string `json:"status"` // e.g. "stable", "drifting", "disrupted"
	StableDays int    `json:"stableDays"`
}

// Polarity tags how strongly a factor contributed to the day's condition.
type Polarity string

const (
	PolarityHighPositive Polarity = "highPositive"
	PolarityPositive     Polarity = "positive"
	PolarityNeutral      Polarity = "neutral"
	PolarityNegative     Polarity = "negative"
	PolarityHighNegative Polarity = "highNegative"
)

// Factor is one weighted contributor to today's condition, with a free-text
// detail the generation step can quote.
type Factor struct {
	Weight   float64  `json:"weight"`
	Polarity Polarity `json:"polarity"`
	Detail   string   `json:"detail"`
}

// HealthSnapshot is the full picture of one calendar day.
type HealthSnapshot struct {
	Date       time.Time        `json:"date"`
	Sleep      *SleepSummary    `json:"sleep,omitempty"`
	Vitals     *MorningVitals   `json:"morningVitals,omitempty"`
	Activity   *DayActivity     `json:"yesterdayActivity,omitempty"`
	WeekTrends *WeekTrends      `json:"weekTrends,omitempty"`
	Scores     *Scores          `json:"scores,omitempty"`
	Rhythm     *RhythmStability `json:"rhythm,omitempty"`
	Factors    []Factor         `json:"factors,omitempty"`
}

// HasScores reports whether the snapshot carries a usable per-domain score
// set. An AdviceRequest must never be assembled from a snapshot without one.
func (h *HealthSnapshot) HasScores() bool {
	return h != nil && h.Scores != nil && h.Scores.InBounds()
}
