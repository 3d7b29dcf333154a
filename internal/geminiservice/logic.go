package geminiservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"Wellpulse_V0.1/internal/advice"
	"Wellpulse_V0.1/internal/config"
	"Wellpulse_V0.1/internal/database"
)

// Generator abstracts the structured-output generation call so the advisor
// can be exercised with fakes.
type Generator interface {
	GenerateAdvice(ctx context.Context, req *advice.AdviceRequest) (*advice.AdviceResponse, error)
}

// Notifier pushes an advice-ready event to the user's live connection, if
// any. A nil notifier is allowed.
type Notifier interface {
	NotifyAdviceReady(userID string, domain advice.Domain)
}

// Advisor is the end-to-end daily advice orchestrator: it loads the user's
// state, runs the pure selection pipeline, drives generation with bounded
// schema retries, and records the delivered try.
type Advisor struct {
	store         database.Store
	gen           Generator
	notifier      Notifier
	schemaRetries int
	language      string
}

// NewAdvisor wires the advisor from its collaborators. notifier may be nil.
func NewAdvisor(store database.Store, gen Generator, notifier Notifier, cfg *config.Config) *Advisor {
	return &Advisor{
		store:         store,
		gen:           gen,
		notifier:      notifier,
		schemaRetries: cfg.SchemaRetries,
		language:      cfg.DefaultLanguage,
	}
}

// DailyAdviceResult is what the handler delivers to the app: the validated
// message, the domain it addresses, and whether the static fallback had to
// stand in for generation.
type DailyAdviceResult struct {
	Response *advice.AdviceResponse `json:"response"`
	Domain   advice.Domain          `json:"domain"`
	Fallback bool                   `json:"fallback"`
}

// userState is the concurrently-loaded input set for one advice run.
type userState struct {
	profile  advice.UserProfile
	snapshot *advice.HealthSnapshot
	tries    advice.TryHistory
	weekly   *advice.TryRecord
}

// DailyAdvice produces today's message for the user. now must already be
// localized to the user's time zone.
func (a *Advisor) DailyAdvice(ctx context.Context, userID string, loc advice.Location, now time.Time) (*DailyAdviceResult, error) {
	state, err := a.loadUserState(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if err := state.profile.Validate(); err != nil {
		return nil, err
	}
	if !state.snapshot.HasScores() {
		return nil, &advice.PreconditionError{
			Op:     "daily_advice",
			Reason: fmt.Sprintf("snapshot for user %s lacks domain scores", userID),
		}
	}

	domain := advice.SelectDomain(*state.snapshot.Scores, state.tries)

	req, err := advice.AssembleRequest(state.profile, *state.snapshot, loc, advice.RequestContext{
		CurrentTime:      now,
		Language:         a.language,
		RecentDailyTries: state.tries,
		LastWeeklyTry:    state.weekly,
	}, domain)
	if err != nil {
		return nil, err
	}

	resp, fallback, err := a.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if !fallback {
		rec := advice.TryRecord{Date: now, Domain: domain}
		if err := a.store.AppendTry(ctx, userID, database.TryKindDaily, rec); err != nil {
			// The message is already generated; losing the history entry
			// risks a repeat tomorrow but must not fail delivery.
			log.Error().Err(err).Str("user_id", userID).Str("domain", string(domain)).
				Msg("Failed to append daily try")
		}
	}

	if a.notifier != nil {
		a.notifier.NotifyAdviceReady(userID, domain)
	}

	log.Info().Str("user_id", userID).Str("domain", string(domain)).
		Bool("fallback", fallback).Msg("Daily advice ready")

	return &DailyAdviceResult{Response: resp, Domain: domain, Fallback: fallback}, nil
}

// generate drives the provider call with bounded retries on schema-invalid
// payloads. Exhausted retries and transient provider failure both degrade to
// the static fallback message; a permanent provider failure (bad request,
// auth) surfaces as an error since retrying or masking it would hide a
// configuration bug.
func (a *Advisor) generate(ctx context.Context, req *advice.AdviceRequest) (*advice.AdviceResponse, bool, error) {
	attempts := a.schemaRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := a.gen.GenerateAdvice(ctx, req)
		if err == nil {
			return resp, false, nil
		}
		lastErr = err

		if advice.IsSchemaError(err) {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("Generated payload failed validation, retrying")
			continue
		}
		if advice.IsRetryable(err) {
			// The client already exhausted its transport retries.
			break
		}
		return nil, false, err
	}

	log.Error().Err(lastErr).Msg("Generation failed, serving fallback message")
	return FallbackMessage(req.Context.Language, req.Context.CurrentTime), true, nil
}

// loadUserState fetches profile, snapshot, recent tries, and the last weekly
// try concurrently. A missing weekly try is normal; a missing profile or
// snapshot fails the run.
func (a *Advisor) loadUserState(ctx context.Context, userID string, now time.Time) (*userState, error) {
	var (
		state userState
		mu    sync.Mutex
	)
	g, grpCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := a.store.GetProfile(grpCtx, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		mu.Lock()
		state.profile = p
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		snap, err := a.store.LatestSnapshot(grpCtx, userID)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		mu.Lock()
		state.snapshot = snap
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		tries, err := a.store.RecentDailyTries(grpCtx, userID, now)
		if err != nil {
			return fmt.Errorf("load tries: %w", err)
		}
		mu.Lock()
		state.tries = tries
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		weekly, err := a.store.LastWeeklyTry(grpCtx, userID)
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load weekly try: %w", err)
		}
		mu.Lock()
		state.weekly = weekly
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &state, nil
}

/* =================================================================================
							FALLBACK MESSAGES
	Served when generation cannot produce a valid payload. Generic by
	design: no user data flows into them, so they are always safe to show.
=================================================================================*/

var fallbackMessages = map[string]*advice.AdviceResponse{
	"en": {
		Greeting: "Hello! Good to see you today.",
		Condition: advice.Condition{
			Summary: "We couldn't prepare your full check-in this time.",
			Detail:  "Your data is safe and your personalized message will be back shortly. In the meantime, treat today as a steady, no-pressure day.",
		},
		ConditionInsight: "Small consistent habits matter more than any single day's numbers.",
		ClosingMessage:   "Take good care of yourself today.",
		DailyTry: advice.DailyTry{
			Title:   "Drink water",
			Summary: "Have a full glass of water right after you read this.",
			Detail:  "Hydration is the easiest win of the day. One glass now, and keep the bottle where you can see it.",
		},
	},
	"id": {
		Greeting: "Halo! Senang bertemu lagi hari ini.",
		Condition: advice.Condition{
			Summary: "Kami belum bisa menyiapkan pesan lengkapmu kali ini.",
			Detail:  "Datamu aman dan pesan personalmu akan segera kembali. Sementara itu, jalani hari ini dengan santai tanpa tekanan.",
		},
		ConditionInsight: "Kebiasaan kecil yang konsisten lebih berarti daripada angka satu hari.",
		ClosingMessage:   "Jaga dirimu baik-baik hari ini.",
		DailyTry: advice.DailyTry{
			Title:   "Minum air",
			Summary: "Minum segelas penuh air setelah membaca pesan ini.",
			Detail:  "Hidrasi adalah kemenangan termudah hari ini. Satu gelas sekarang, lalu letakkan botol di tempat yang terlihat.",
		},
	},
}

// FallbackMessage returns the static message for the language, defaulting to
// English. The greeting is adjusted to the time-of-day slot so even the
// fallback honors the greeting contract.
func FallbackMessage(language string, now time.Time) *advice.AdviceResponse {
	base, ok := fallbackMessages[language]
	if !ok {
		base = fallbackMessages["en"]
	}
	msg := *base
	if language == "en" || !ok {
		switch advice.GreetingSlot(now) {
		case "morning":
			msg.Greeting = "Good morning! Good to see you today."
		case "midday":
			msg.Greeting = "Good afternoon! Good to see you today."
		default:
			msg.Greeting = "Good evening! Good to see you today."
		}
	}
	return &msg
}
