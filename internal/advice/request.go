package advice

import "time"

/* =================================================================================
							OUTBOUND REQUEST ASSEMBLY
=================================================================================*/

// Location is the user's last known position, used by the generation step
// for weather and daylight framing. City is optional.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
}

// RequestContext carries the per-invocation situational facts. CurrentTime
// must already be localized to the user's time zone; this package derives
// DayOfWeek and IsMonday from it and never converts zones itself.
type RequestContext struct {
	CurrentTime      time.Time  `json:"currentTime"`
	DayOfWeek        string     `json:"dayOfWeek"`
	IsMonday         bool       `json:"isMonday"`
	Language         string     `json:"language,omitempty"`
	RecentDailyTries TryHistory `json:"recentDailyTries"`
	LastWeeklyTry    *TryRecord `json:"lastWeeklyTry,omitempty"`
}

// AdviceRequest is the structured payload handed to the generation provider.
// It is ephemeral: constructed per invocation, never persisted beyond the
// call.
type AdviceRequest struct {
	UserProfile UserProfile    `json:"userProfile"`
	HealthData  HealthSnapshot `json:"healthData"`
	Location    Location       `json:"location"`
	Context     RequestContext `json:"context"`
	FocusDomain Domain         `json:"focusDomain"`
}

// AssembleRequest builds the outbound request from its validated parts. It
// fails with a *PreconditionError when the profile does not pass Validate or
// when the snapshot lacks domain scores — both indicate a caller bug, not a
// user input problem. The recent-tries list is truncated to the look-back
// window ending on ctx.CurrentTime, and DayOfWeek/IsMonday are derived from
// that same timestamp. AssembleRequest performs no I/O; it is a pure
// transform producing a serializable value.
func AssembleRequest(profile UserProfile, snapshot HealthSnapshot, loc Location, ctx RequestContext, domain Domain) (*AdviceRequest, error) {
	if err := profile.Validate(); err != nil {
		return nil, &PreconditionError{
			Op:     "assemble",
			Reason: "profile has not passed validation",
			Err:    err,
		}
	}
	if !snapshot.HasScores() {
		return nil, &PreconditionError{
			Op:     "assemble",
			Reason: "health snapshot lacks domain scores",
		}
	}

	ctx.RecentDailyTries = ctx.RecentDailyTries.WithinWindow(ctx.CurrentTime)
	ctx.DayOfWeek = ctx.CurrentTime.Weekday().String()
	ctx.IsMonday = ctx.CurrentTime.Weekday() == time.Monday

	return &AdviceRequest{
		UserProfile: profile,
		HealthData:  snapshot,
		Location:    loc,
		Context:     ctx,
		FocusDomain: domain,
	}, nil
}

// GreetingSlot names the greeting the provider is expected to open with at
// the given local time: "morning" until 13:00, "midday" until 18:00 and
// "evening" otherwise. The binding is informational — validation checks
// structure, never phrasing.
func GreetingSlot(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 6 && h < 13:
		return "morning"
	case h >= 13 && h <= 18:
		return "midday"
	default:
		return "evening"
	}
}
