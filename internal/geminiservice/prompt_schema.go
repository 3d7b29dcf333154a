package geminiservice

import (
	"encoding/json"
	"fmt"
	"strings"

	"Wellpulse_V0.1/internal/advice"
)

/* =================================================================================
							GEMINI SCHEMA DEFINITION
	This is the core structure that tells Gemini how to format its JSON response
=================================================================================*/

// GeminiSchema defines the structure for "Controlled Generation" (Structured Output).
// It maps to Google's generative-ai-go/genai Schema type.
type GeminiSchema struct {
	// Type defines the data type (e.g., "OBJECT", "ARRAY", "STRING", "INTEGER").
	Type string `json:"type"`

	// Format specifies data format, primarily used for "enum" validation.
	Format string `json:"format,omitempty"`

	// Description explains the field's purpose to the AI, helping it generate better content.
	Description string `json:"description,omitempty"`

	// Properties maps field names to their child schemas (used when Type is "OBJECT").
	Properties map[string]*GeminiSchema `json:"properties,omitempty"` // Use pointer for recursion

	// Items defines the schema for elements within an array (used when Type is "ARRAY").
	Items *GeminiSchema `json:"items,omitempty"`

	// Required lists the field names that the AI MUST include in the response.
	Required []string `json:"required,omitempty"`

	// Enum lists valid specific string values for fields with restricted options.
	Enum []string `json:"enum,omitempty"`
}

/* =================================================================================
						PROMPT ENGINEERING & GUARDRAILS
=================================================================================*/

/*
SystemPrompt defines the "Persona" and "Guardrails" for the model.
It pins the message to one focus domain per day and forbids anything that
could read as a diagnosis.
*/
const SystemPrompt = `You are a warm, encouraging daily wellness companion.
You write ONE short personalized daily message for the user based on their
profile, last night's health data, and today's focus domain.

LANGUAGE OUTPUT:
Write every field in the language named in the request context ("language").
Keep the register friendly and plain; address the user by nickname.

SAFETY RULES (CRITICAL):
- You are NOT a doctor. NEVER diagnose, never name diseases, never suggest
  medication or dosage changes.
- If the health data looks alarming, gently suggest the user talks to a
  professional; keep the rest of the message supportive.
- Never scold the user for poor numbers. Frame everything as an opportunity.

CONTENT RULES:
1. The daily try MUST address the "focusDomain" in the request and nothing
   else. One concrete, small action the user can finish today.
2. The greeting must fit the time-of-day slot given in the context:
   morning before 13:00, midday until 18:00, evening after that.
3. Mention at most two concrete numbers from the health data; prefer the
   factors list for color.
4. On Mondays ("isMonday" true) you may reference the fresh week.
5. Do NOT repeat any topic listed under "recentDailyTries".
6. The daily_try title is at most 15 characters. Summaries are one sentence.

RESPONSE FORMAT:
- Return ONLY the JSON structure defined in the schema
- Do NOT add markdown, explanations, or preamble
- Do NOT use emoji or decorative symbols in any field`

/*
UserPromptTemplate is the formatted string used to build the final message.
It uses fmt.Sprintf to inject the serialized request sections at runtime.
*/
const UserPromptTemplate = `
=== USER PROFILE ===
%s

=== TODAY'S HEALTH DATA ===
%s

=== LOCATION ===
%s

=== REQUEST CONTEXT ===
%s

INSTRUCTIONS:
1. Today's focus domain is: %s. The daily try must address it.
2. Open with a %s greeting using the user's nickname.
3. Ground the condition summary in the weakest numbers of the day and the
   listed factors; keep the insight to one observation the user can act on.
4. Avoid every topic in recentDailyTries.
5. Fill every schema field; keep daily_try.title within 15 characters.`

// BuildAdvicePrompt serializes the assembled request into the user prompt.
// Sections are pretty-printed JSON so the model sees field names verbatim.
func BuildAdvicePrompt(req *advice.AdviceRequest) string {
	return fmt.Sprintf(
		UserPromptTemplate,
		mustJSON(req.UserProfile),
		mustJSON(req.HealthData),
		mustJSON(req.Location),
		mustJSON(req.Context),
		req.FocusDomain.Label(),
		advice.GreetingSlot(req.Context.CurrentTime),
	)
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// All request types marshal cleanly; this only fires on a new
		// unmarshalable field slipping in.
		return fmt.Sprintf("(unserializable: %v)", err)
	}
	return strings.TrimSpace(string(b))
}

/*
AdviceResponseSchema describes the exact JSON structure the model MUST output.
This schema is passed to the Gemini configuration to enforce strict validation.
*/
var AdviceResponseSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"greeting": {
			Type:        "STRING",
			Description: "One-sentence greeting matching the time-of-day slot, addressing the user by nickname.",
		},
		"condition": {
			Type:        "OBJECT",
			Description: "Today's condition assessment derived from the health data.",
			Properties: map[string]*GeminiSchema{
				"summary": {
					Type:        "STRING",
					Description: "One sentence: overall read of today's condition.",
				},
				"detail": {
					Type:        "STRING",
					Description: "2-3 sentences grounding the summary in the day's numbers and factors.",
				},
			},
			Required: []string{"summary", "detail"},
		},
		"condition_insight": {
			Type:        "STRING",
			Description: "One actionable observation connecting the data to the focus domain.",
		},
		"closing_message": {
			Type:        "STRING",
			Description: "One warm closing sentence.",
		},
		"daily_try": {
			Type:        "OBJECT",
			Description: "The single suggested action for today. Must address the focus domain.",
			Properties: map[string]*GeminiSchema{
				"title": {
					Type:        "STRING",
					Description: "Short action title, 15 characters maximum.",
				},
				"summary": {
					Type:        "STRING",
					Description: "One sentence describing the action.",
				},
				"detail": {
					Type:        "STRING",
					Description: "2-3 sentences: how to do it and why it helps today.",
				},
			},
			Required: []string{"title", "summary", "detail"},
		},
	},
	Required: []string{"greeting", "condition", "condition_insight", "closing_message", "daily_try"},
}
