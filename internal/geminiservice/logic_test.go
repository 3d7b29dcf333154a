package geminiservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Wellpulse_V0.1/internal/advice"
	"Wellpulse_V0.1/internal/config"
	"Wellpulse_V0.1/internal/database"
)

/* =================================================================================
							FAKES
=================================================================================*/

type memStore struct {
	profile  advice.UserProfile
	snapshot *advice.HealthSnapshot
	tries    advice.TryHistory
	weekly   *advice.TryRecord

	appended []advice.TryRecord
}

func (m *memStore) GetProfile(ctx context.Context, userID string) (advice.UserProfile, error) {
	return m.profile, nil
}

func (m *memStore) PutProfile(ctx context.Context, userID string, p advice.UserProfile) error {
	m.profile = p
	return nil
}

func (m *memStore) LatestSnapshot(ctx context.Context, userID string) (*advice.HealthSnapshot, error) {
	if m.snapshot == nil {
		return nil, database.ErrNotFound
	}
	return m.snapshot, nil
}

func (m *memStore) PutSnapshot(ctx context.Context, userID string, snap advice.HealthSnapshot) error {
	m.snapshot = &snap
	return nil
}

func (m *memStore) RecentDailyTries(ctx context.Context, userID string, asOf time.Time) (advice.TryHistory, error) {
	return m.tries.WithinWindow(asOf), nil
}

func (m *memStore) LastWeeklyTry(ctx context.Context, userID string) (*advice.TryRecord, error) {
	if m.weekly == nil {
		return nil, database.ErrNotFound
	}
	return m.weekly, nil
}

func (m *memStore) AppendTry(ctx context.Context, userID, kind string, rec advice.TryRecord) error {
	m.appended = append(m.appended, rec)
	m.tries = m.tries.Append(rec)
	return nil
}

type fakeGenerator struct {
	responses []*advice.AdviceResponse
	errs      []error
	calls     int
	lastReq   *advice.AdviceRequest
}

func (f *fakeGenerator) GenerateAdvice(ctx context.Context, req *advice.AdviceRequest) (*advice.AdviceResponse, error) {
	i := f.calls
	f.calls++
	f.lastReq = req
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, errors.New("fakeGenerator: no scripted result")
}

type fakeNotifier struct {
	userID string
	domain advice.Domain
	count  int
}

func (f *fakeNotifier) NotifyAdviceReady(userID string, domain advice.Domain) {
	f.userID = userID
	f.domain = domain
	f.count++
}

/* =================================================================================
							FIXTURES
=================================================================================*/

func advisorConfig() *config.Config {
	return &config.Config{SchemaRetries: 2, DefaultLanguage: "en"}
}

func goodResponse() *advice.AdviceResponse {
	return &advice.AdviceResponse{
		Greeting:         "Good morning, Alex!",
		Condition:        advice.Condition{Summary: "Steady.", Detail: "Everything within your usual range."},
		ConditionInsight: "A short walk would lift your activity trend.",
		ClosingMessage:   "Enjoy your day.",
		DailyTry:         advice.DailyTry{Title: "Walk 10 min", Summary: "Walk after lunch.", Detail: "Ten minutes is enough to count."},
	}
}

func seededStore(day time.Time) *memStore {
	return &memStore{
		profile: advice.UserProfile{
			Nickname: "Alex", Age: 28, WeightKg: 70, HeightCm: 175,
			Gender:    advice.GenderUnspecified,
			Interests: []advice.Domain{advice.DomainFitness, advice.DomainEnergy},
		},
		snapshot: &advice.HealthSnapshot{
			Date:   day,
			Scores: &advice.Scores{Sleep: 78, HRV: 85, Rhythm: 72, Activity: 52},
		},
	}
}

/* =================================================================================
							TESTS
=================================================================================*/

func TestDailyAdviceHappyPath(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 30, 0, 0, time.UTC)
	store := seededStore(now)
	gen := &fakeGenerator{responses: []*advice.AdviceResponse{goodResponse()}}
	notifier := &fakeNotifier{}

	advisor := NewAdvisor(store, gen, notifier, advisorConfig())
	result, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, advice.DomainFitness, result.Domain, "activity is the weakest metric")
	assert.Equal(t, goodResponse(), result.Response)

	require.Len(t, store.appended, 1)
	assert.Equal(t, advice.DomainFitness, store.appended[0].Domain)

	assert.Equal(t, 1, notifier.count)
	assert.Equal(t, "u1", notifier.userID)

	require.NotNil(t, gen.lastReq)
	assert.Equal(t, advice.DomainFitness, gen.lastReq.FocusDomain)
	assert.Equal(t, "en", gen.lastReq.Context.Language)
}

// Matches the fuller end-to-end contract: activity is the weakest metric and
// fitness was already tried twice inside the window, so energy wins.
func TestDailyAdviceAvoidsRecentDomain(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 30, 0, 0, time.UTC)
	store := seededStore(now)
	store.tries = advice.TryHistory{
		{Date: now.AddDate(0, 0, -5), Domain: advice.DomainFitness},
		{Date: now.AddDate(0, 0, -2), Domain: advice.DomainFitness},
	}
	gen := &fakeGenerator{responses: []*advice.AdviceResponse{goodResponse()}}

	advisor := NewAdvisor(store, gen, nil, advisorConfig())
	result, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.NoError(t, err)
	assert.Equal(t, advice.DomainEnergy, result.Domain)
}

func TestDailyAdviceRetriesSchemaErrorsThenSucceeds(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 30, 0, 0, time.UTC)
	store := seededStore(now)
	gen := &fakeGenerator{
		errs:      []error{&advice.SchemaError{Field: "daily_try.title", Reason: "is required"}, nil},
		responses: []*advice.AdviceResponse{nil, goodResponse()},
	}

	advisor := NewAdvisor(store, gen, nil, advisorConfig())
	result, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	assert.Equal(t, 2, gen.calls)
}

func TestDailyAdviceFallsBackAfterSchemaRetriesExhaust(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	store := seededStore(now)
	schemaErr := &advice.SchemaError{Field: "greeting", Reason: "is required"}
	gen := &fakeGenerator{errs: []error{schemaErr, schemaErr, schemaErr}}

	advisor := NewAdvisor(store, gen, nil, advisorConfig())
	result, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Equal(t, 3, gen.calls, "SchemaRetries=2 means three generation attempts")
	assert.NoError(t, advice.ValidateResponse(result.Response, advice.ResponseOptions{}),
		"the fallback must itself satisfy the response contract")
	assert.Contains(t, result.Response.Greeting, "afternoon")

	assert.Empty(t, store.appended, "a fallback does not consume the domain")
}

func TestDailyAdviceFallsBackOnTransientProviderFailure(t *testing.T) {
	now := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	store := seededStore(now)
	gen := &fakeGenerator{errs: []error{
		&advice.ProviderError{Op: "generate", Status: 503, Retryable: true, Err: errors.New("overloaded")},
	}}

	advisor := NewAdvisor(store, gen, nil, advisorConfig())
	result, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, 1, gen.calls, "the client already exhausted transport retries")
}

func TestDailyAdviceSurfacesPermanentProviderFailure(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	store := seededStore(now)
	gen := &fakeGenerator{errs: []error{
		&advice.ProviderError{Op: "generate", Status: 401, Retryable: false, Err: errors.New("bad key")},
	}}

	advisor := NewAdvisor(store, gen, nil, advisorConfig())
	_, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.Error(t, err)
	assert.True(t, advice.IsProviderError(err))
}

func TestDailyAdviceRejectsInvalidProfile(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	store := seededStore(now)
	store.profile.Age = 15
	gen := &fakeGenerator{}

	advisor := NewAdvisor(store, gen, nil, advisorConfig())
	_, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.Error(t, err)
	assert.True(t, advice.IsValidationError(err))
	assert.Zero(t, gen.calls, "nothing is generated for an invalid profile")
}

func TestDailyAdviceRequiresSnapshotScores(t *testing.T) {
	now := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	store := seededStore(now)
	store.snapshot.Scores = nil

	advisor := NewAdvisor(store, &fakeGenerator{}, nil, advisorConfig())
	_, err := advisor.DailyAdvice(context.Background(), "u1", advice.Location{}, now)
	require.Error(t, err)
	assert.True(t, advice.IsPreconditionError(err))
}

func TestFallbackMessageLanguageSelection(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	en := FallbackMessage("en", now)
	assert.Contains(t, en.Greeting, "morning")

	id := FallbackMessage("id", now)
	assert.Equal(t, "Minum air", id.DailyTry.Title)

	unknown := FallbackMessage("fr", now)
	assert.NoError(t, advice.ValidateResponse(unknown, advice.ResponseOptions{}))
}
