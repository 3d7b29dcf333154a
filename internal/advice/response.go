package advice

import (
	"encoding/json"
	"fmt"
	"unicode"
	"unicode/utf8"
)

/* =================================================================================
							INBOUND RESPONSE VALIDATION
	The generated payload is checked for shape and validity only; semantic
	quality of the text is explicitly out of scope.
=================================================================================*/

// MaxDailyTryTitleLength caps the daily try title, counted in runes so the
// limit matches what the user perceives as characters.
const MaxDailyTryTitleLength = 15

// Condition is the two-part assessment of today's state.
type Condition struct {
	Summary string `json:"summary"`
	Detail  string `json:"detail"`
}

// DailyTry is the single suggested action for the current day.
type DailyTry struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Detail  string `json:"detail"`
}

// AdviceResponse is the structured payload received from the generation
// provider. After validation it is handed to the application unchanged; this
// core never mutates it further.
type AdviceResponse struct {
	Greeting         string    `json:"greeting"`
	Condition        Condition `json:"condition"`
	ConditionInsight string    `json:"condition_insight"`
	ClosingMessage   string    `json:"closing_message"`
	DailyTry         DailyTry  `json:"daily_try"`
}

// ResponseOptions configures optional validation constraints.
type ResponseOptions struct {
	// ForbidEmoji rejects payloads containing emoji runes in any field.
	ForbidEmoji bool
}

// responseField pairs a dotted field path with its value accessor; the slice
// order below is the fixed order violations are reported in.
type responseField struct {
	path  string
	value func(*AdviceResponse) string
}

var responseFields = []responseField{
	{"greeting", func(r *AdviceResponse) string { return r.Greeting }},
	{"condition.summary", func(r *AdviceResponse) string { return r.Condition.Summary }},
	{"condition.detail", func(r *AdviceResponse) string { return r.Condition.Detail }},
	{"condition_insight", func(r *AdviceResponse) string { return r.ConditionInsight }},
	{"closing_message", func(r *AdviceResponse) string { return r.ClosingMessage }},
	{"daily_try.title", func(r *AdviceResponse) string { return r.DailyTry.Title }},
	{"daily_try.summary", func(r *AdviceResponse) string { return r.DailyTry.Summary }},
	{"daily_try.detail", func(r *AdviceResponse) string { return r.DailyTry.Detail }},
}

// ParseResponse decodes the provider's raw JSON and validates it. The
// returned error is a *SchemaError naming the first offending field, so the
// caller can decide between retrying generation and falling back.
func ParseResponse(raw []byte, opts ResponseOptions) (*AdviceResponse, error) {
	var resp AdviceResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &SchemaError{Field: "payload", Reason: fmt.Sprintf("is not valid JSON: %v", err)}
	}
	if err := ValidateResponse(&resp, opts); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateResponse checks required-field presence for every field of the
// response contract in fixed order, enforces the daily try title length, and
// optionally rejects emoji. It returns nil or a *SchemaError for the first
// violation found.
func ValidateResponse(r *AdviceResponse, opts ResponseOptions) error {
	for _, f := range responseFields {
		if f.value(r) == "" {
			return &SchemaError{Field: f.path, Reason: "is required"}
		}
	}
	if n := utf8.RuneCountInString(r.DailyTry.Title); n > MaxDailyTryTitleLength {
		return &SchemaError{
			Field:  "daily_try.title",
			Reason: fmt.Sprintf("is %d characters, limit is %d", n, MaxDailyTryTitleLength),
		}
	}
	if opts.ForbidEmoji {
		for _, f := range responseFields {
			if containsEmoji(f.value(r)) {
				return &SchemaError{Field: f.path, Reason: "contains emoji"}
			}
		}
	}
	return nil
}

// emojiRanges covers the Unicode blocks emoji are drawn from: miscellaneous
// symbols, dingbats, regional indicators, and the supplementary
// symbols-and-pictographs planes, plus the emoji variation selector.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols + dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // misc symbols and arrows
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1}, // variation selector-16
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // misc symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport and map
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental symbols
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // symbols and pictographs extended
	},
}

func containsEmoji(s string) bool {
	for _, r := range s {
		if unicode.Is(emojiRanges, r) {
			return true
		}
	}
	return false
}
