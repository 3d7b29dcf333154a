package advice

import (
	"fmt"
	"unicode/utf8"
)

/* =================================================================================
							PROFILE ENUMS
	Each enum is a plain tag; display strings live in the *Labels lookup
	tables below so the domain types stay free of presentation concerns.
=================================================================================*/

// Gender is the user's self-reported gender tag.
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"
)

// Occupation is an optional lifestyle hint; the zero value means unset.
type Occupation string

const (
	OccupationOffice    Occupation = "office"
	OccupationPhysical  Occupation = "physical"
	OccupationStudent   Occupation = "student"
	OccupationHomemaker Occupation = "homemaker"
	OccupationRetired   Occupation = "retired"
)

// LifestyleRhythm describes the user's habitual daily timing.
type LifestyleRhythm string

const (
	RhythmMorning   LifestyleRhythm = "morning"
	RhythmNight     LifestyleRhythm = "night"
	RhythmIrregular LifestyleRhythm = "irregular"
)

// ExerciseFrequency is a coarse self-reported training cadence.
type ExerciseFrequency string

const (
	ExerciseNone       ExerciseFrequency = "none"
	ExerciseOccasional ExerciseFrequency = "occasional"
	ExerciseRegular    ExerciseFrequency = "regular"
	ExerciseDaily      ExerciseFrequency = "daily"
)

// AlcoholFrequency is a coarse self-reported drinking cadence.
type AlcoholFrequency string

const (
	AlcoholNone    AlcoholFrequency = "none"
	AlcoholMonthly AlcoholFrequency = "monthly"
	AlcoholWeekly  AlcoholFrequency = "weekly"
	AlcoholDaily   AlcoholFrequency = "daily"
)

// GenderLabels maps gender tags to display strings.
var GenderLabels = map[Gender]string{
	GenderMale:        "Male",
	GenderFemale:      "Female",
	GenderOther:       "Other",
	GenderUnspecified: "Prefer not to say",
}

// OccupationLabels maps occupation tags to display strings.
var OccupationLabels = map[Occupation]string{
	OccupationOffice:    "Office worker",
	OccupationPhysical:  "Physical work",
	OccupationStudent:   "Student",
	OccupationHomemaker: "Homemaker",
	OccupationRetired:   "Retired",
}

// LifestyleRhythmLabels maps rhythm tags to display strings.
var LifestyleRhythmLabels = map[LifestyleRhythm]string{
	RhythmMorning:   "Morning person",
	RhythmNight:     "Night owl",
	RhythmIrregular: "Irregular",
}

// ExerciseFrequencyLabels maps exercise tags to display strings.
var ExerciseFrequencyLabels = map[ExerciseFrequency]string{
	ExerciseNone:       "Rarely",
	ExerciseOccasional: "1-2 times a week",
	ExerciseRegular:    "3-4 times a week",
	ExerciseDaily:      "Almost daily",
}

// AlcoholFrequencyLabels maps alcohol tags to display strings.
var AlcoholFrequencyLabels = map[AlcoholFrequency]string{
	AlcoholNone:    "None",
	AlcoholMonthly: "A few times a month",
	AlcoholWeekly:  "A few times a week",
	AlcoholDaily:   "Almost daily",
}

/* =================================================================================
							USER PROFILE
=================================================================================*/

// Validation limits for profile fields.
const (
	MaxNicknameLength = 20  // characters, counted in runes
	MinAge            = 18  // years
	MinWeightKg       = 30  // kilograms
	MinHeightCm       = 100 // centimeters
	MinInterests      = 1
	MaxInterests      = 3

	// profileFieldInventory is the fixed denominator for CompletionRate:
	// 5 required scalar fields + 4 optional enums + the "has at least one
	// interest" slot. Fixed once, used consistently everywhere completion
	// is displayed.
	profileFieldInventory = 10
)

// UserProfile holds the identity and preference facts collected at
// onboarding. It is mutated only by explicit profile edits and destroyed on
// account reset.
type UserProfile struct {
	Nickname          string            `json:"nickname"`
	Age               int               `json:"age"`
	WeightKg          float64           `json:"weightKg"`
	HeightCm          float64           `json:"heightCm"`
	Gender            Gender            `json:"gender"`
	Occupation        Occupation        `json:"occupation,omitempty"`
	LifestyleRhythm   LifestyleRhythm   `json:"lifestyleRhythm,omitempty"`
	ExerciseFrequency ExerciseFrequency `json:"exerciseFrequency,omitempty"`
	AlcoholFrequency  AlcoholFrequency  `json:"alcoholFrequency,omitempty"`
	Interests         []Domain          `json:"interests"`
}

// Validate runs the profile checks in their fixed order and returns the
// first violation as a *ValidationError, or nil when the profile is valid.
// First failure wins; callers never receive more than one error at a time.
// Validate is pure and has no side effects.
func (p UserProfile) Validate() error {
	if p.Nickname == "" {
		return NewValidationError(CodeEmptyNickname, "nickname", "nickname must not be empty")
	}
	if utf8.RuneCountInString(p.Nickname) > MaxNicknameLength {
		return NewValidationError(CodeNicknameTooLong, "nickname",
			fmt.Sprintf("nickname must be at most %d characters", MaxNicknameLength))
	}
	if p.Age < MinAge {
		return NewValidationError(CodeInvalidAge, "age",
			fmt.Sprintf("age must be at least %d", MinAge))
	}
	if p.WeightKg < MinWeightKg {
		return NewValidationError(CodeInvalidWeight, "weightKg",
			fmt.Sprintf("weight must be at least %d kg", MinWeightKg))
	}
	if p.HeightCm < MinHeightCm {
		return NewValidationError(CodeInvalidHeight, "heightCm",
			fmt.Sprintf("height must be at least %d cm", MinHeightCm))
	}
	if n := countDistinctInterests(p.Interests); n < MinInterests || n > MaxInterests || n != len(p.Interests) {
		return NewValidationError(CodeInvalidInterestsCount, "interests",
			fmt.Sprintf("interests must hold %d to %d distinct domains", MinInterests, MaxInterests))
	}
	return nil
}

// BMI derives body mass index from weight and height. A height of zero
// yields 0 rather than propagating a division by zero; the result is a pure
// derived read and stays computable even on a profile that fails Validate.
func (p UserProfile) BMI() float64 {
	if p.HeightCm <= 0 {
		return 0
	}
	meters := p.HeightCm / 100
	return p.WeightKg / (meters * meters)
}

// CompletionRate reports how much of the fixed profile field inventory has
// been filled in, as a fraction in [0,1]. Gender counts as filled only when
// it is an explicit choice, not "unspecified". Like BMI this is a derived
// read, not a validation step, so the UI can show partial progress before
// the profile passes Validate.
func (p UserProfile) CompletionRate() float64 {
	filled := 0
	if p.Nickname != "" {
		filled++
	}
	if p.Age > 0 {
		filled++
	}
	if p.WeightKg > 0 {
		filled++
	}
	if p.HeightCm > 0 {
		filled++
	}
	if p.Gender != "" && p.Gender != GenderUnspecified {
		filled++
	}
	if p.Occupation != "" {
		filled++
	}
	if p.LifestyleRhythm != "" {
		filled++
	}
	if p.ExerciseFrequency != "" {
		filled++
	}
	if p.AlcoholFrequency != "" {
		filled++
	}
	if len(p.Interests) > 0 {
		filled++
	}
	return float64(filled) / profileFieldInventory
}

func countDistinctInterests(interests []Domain) int {
	seen := make(map[Domain]struct{}, len(interests))
	for _, d := range interests {
		seen[d] = struct{}{}
	}
	return len(seen)
}
