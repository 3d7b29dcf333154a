package advice

import "math"

// Score bounds and defaults.
const (
	MaxScore = 100

	// NeutralScore is the mid-range value a metric degrades to when its
	// inputs are missing. Missing data must never fail the whole
	// computation.
	NeutralScore = 50

	// trendWindowDays is the span of the trailing averages in WeekTrends
	// and the ceiling for the rhythm stability streak.
	trendWindowDays = 7
)

// DayInput bundles the raw material for one day's scoring. Sections are the
// same optional pieces a HealthSnapshot carries; nil means the collaborator
// delivered no data for that dimension.
type DayInput struct {
	Sleep    *SleepSummary
	Vitals   *MorningVitals
	Activity *DayActivity
	Trends   *WeekTrends
	Rhythm   *RhythmStability
}

// ScoreDay normalizes a day's raw samples into the four bounded domain
// scores. Each score is a deterministic function of the day's value relative
// to the user's own 7-day trailing average: at or above the average lands in
// the upper half of the range, below it in the lower half, clamped to
// [0,100]. Each mapping is monotonic in its single input dimension — more
// sleep never yields a lower sleep score, all else equal. Missing inputs
// degrade to NeutralScore instead of erroring.
func ScoreDay(in DayInput) Scores {
	s := Scores{
		Sleep:    NeutralScore,
		HRV:      NeutralScore,
		Rhythm:   NeutralScore,
		Activity: NeutralScore,
	}

	if in.Trends != nil {
		if in.Sleep != nil {
			s.Sleep = ratioScore(float64(in.Sleep.DurationMinutes), in.Trends.SleepHours*60)
		}
		if in.Vitals != nil {
			s.HRV = ratioScore(in.Vitals.HRV, in.Trends.HRV)
		}
		if in.Activity != nil {
			s.Activity = ratioScore(float64(in.Activity.Steps), in.Trends.Steps)
		}
	}
	if in.Rhythm != nil {
		s.Rhythm = streakScore(in.Rhythm.StableDays)
	}
	return s
}

// ratioScore maps value/average onto [0,100] so that exactly meeting the
// trailing average scores 50 and doubling it saturates at 100. Non-positive
// values or averages count as missing data and return the neutral score.
func ratioScore(value, average float64) int {
	if value <= 0 || average <= 0 {
		return NeutralScore
	}
	return clampScore(math.Round(NeutralScore * value / average))
}

// streakScore scales the consecutive-stable-day count against the 7-day
// window. Negative counts are treated as unknown.
func streakScore(stableDays int) int {
	if stableDays < 0 {
		return NeutralScore
	}
	return clampScore(math.Round(MaxScore * float64(stableDays) / trendWindowDays))
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return int(v)
}
