package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Wellpulse_V0.1/internal/advice"
	"Wellpulse_V0.1/internal/config"
	"Wellpulse_V0.1/internal/database"
	"Wellpulse_V0.1/internal/geminiservice"
	"Wellpulse_V0.1/internal/utility"
)

/* =================================================================================
							FAKES
=================================================================================*/

type memStore struct {
	profiles  map[string]advice.UserProfile
	snapshots map[string]*advice.HealthSnapshot
	tries     map[string]advice.TryHistory
}

func newMemStore() *memStore {
	return &memStore{
		profiles:  map[string]advice.UserProfile{},
		snapshots: map[string]*advice.HealthSnapshot{},
		tries:     map[string]advice.TryHistory{},
	}
}

func (m *memStore) GetProfile(ctx context.Context, userID string) (advice.UserProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return advice.UserProfile{}, database.ErrNotFound
	}
	return p, nil
}

func (m *memStore) PutProfile(ctx context.Context, userID string, p advice.UserProfile) error {
	m.profiles[userID] = p
	return nil
}

func (m *memStore) LatestSnapshot(ctx context.Context, userID string) (*advice.HealthSnapshot, error) {
	s, ok := m.snapshots[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s, nil
}

func (m *memStore) PutSnapshot(ctx context.Context, userID string, snap advice.HealthSnapshot) error {
	if _, ok := m.snapshots[userID]; !ok || !m.snapshots[userID].Date.Equal(snap.Date) {
		m.snapshots[userID] = &snap
	}
	return nil
}

func (m *memStore) RecentDailyTries(ctx context.Context, userID string, asOf time.Time) (advice.TryHistory, error) {
	return m.tries[userID].WithinWindow(asOf), nil
}

func (m *memStore) LastWeeklyTry(ctx context.Context, userID string) (*advice.TryRecord, error) {
	return nil, database.ErrNotFound
}

func (m *memStore) AppendTry(ctx context.Context, userID, kind string, rec advice.TryRecord) error {
	m.tries[userID] = m.tries[userID].Append(rec)
	return nil
}

type staticGenerator struct {
	resp *advice.AdviceResponse
}

func (g *staticGenerator) GenerateAdvice(ctx context.Context, req *advice.AdviceRequest) (*advice.AdviceResponse, error) {
	return g.resp, nil
}

/* =================================================================================
							FIXTURES
=================================================================================*/

func testHandlers(store database.Store, gen geminiservice.Generator) *Handlers {
	cfg := &config.Config{SchemaRetries: 1, DefaultLanguage: "en"}
	advisor := geminiservice.NewAdvisor(store, gen, nil, cfg)
	return NewHandlers(store, advisor, utility.NewHub(), cfg)
}

func doRequest(h echo.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/", reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	_ = h(c)
	return rec
}

func validProfileBody() string {
	return `{
		"nickname": "Alex",
		"age": 28,
		"weight_kg": 70,
		"height_cm": 175,
		"gender": "female",
		"interests": ["fitness", "energy"]
	}`
}

/* =================================================================================
							TESTS
=================================================================================*/

func TestUpdateProfileHandlerPersistsAndDerives(t *testing.T) {
	store := newMemStore()
	h := testHandlers(store, &staticGenerator{})

	rec := doRequest(h.UpdateProfileHandler, http.MethodPut, validProfileBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Alex", resp.Profile.Nickname)
	assert.InDelta(t, 70.0/(1.75*1.75), resp.BMI, 1e-9)
	assert.InDelta(t, 0.6, resp.CompletionRate, 1e-9, "5 required + gender choice + interests over the 10-slot inventory")

	stored, err := store.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, advice.GenderFemale, stored.Gender)
}

func TestUpdateProfileHandlerReportsFirstViolation(t *testing.T) {
	h := testHandlers(newMemStore(), &staticGenerator{})

	body := `{"nickname": "", "age": 10, "weight_kg": 20, "height_cm": 90, "interests": []}`
	rec := doRequest(h.UpdateProfileHandler, http.MethodPut, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, advice.CodeEmptyNickname, resp["code"], "first failure wins")
	assert.Equal(t, "nickname", resp["field"])
}

func TestGetProfileHandlerNotFound(t *testing.T) {
	h := testHandlers(newMemStore(), &staticGenerator{})
	rec := doRequest(h.GetProfileHandler, http.MethodGet, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestSnapshotHandlerComputesScores(t *testing.T) {
	store := newMemStore()
	h := testHandlers(store, &staticGenerator{})

	body := `{
		"date": "2026-08-28T00:00:00Z",
		"sleep": {"durationMinutes": 420},
		"week_trends": {"sleepHours": 7, "hrv": 45, "steps": 8000}
	}`
	rec := doRequest(h.IngestSnapshotHandler, http.MethodPost, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Snapshot.Scores)
	assert.Equal(t, 50, resp.Snapshot.Scores.Sleep, "exactly on the trailing average")
	assert.Equal(t, advice.NeutralScore, resp.Snapshot.Scores.HRV, "missing vitals degrade to neutral")
	assert.Equal(t, advice.NeutralScore, resp.Snapshot.Scores.Activity)

	stored, err := store.LatestSnapshot(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, stored.HasScores())
}

func TestIngestSnapshotHandlerRequiresDate(t *testing.T) {
	h := testHandlers(newMemStore(), &staticGenerator{})
	rec := doRequest(h.IngestSnapshotHandler, http.MethodPost, `{"sleep": {"durationMinutes": 400}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyAdviceHandlerEndToEnd(t *testing.T) {
	store := newMemStore()
	store.profiles["u1"] = advice.UserProfile{
		Nickname: "Alex", Age: 28, WeightKg: 70, HeightCm: 175,
		Gender:    advice.GenderUnspecified,
		Interests: []advice.Domain{advice.DomainFitness, advice.DomainEnergy},
	}
	now := time.Date(2026, 8, 28, 8, 30, 0, 0, time.UTC)
	store.snapshots["u1"] = &advice.HealthSnapshot{
		Date:   now,
		Scores: &advice.Scores{Sleep: 78, HRV: 85, Rhythm: 72, Activity: 52},
	}
	store.tries["u1"] = advice.TryHistory{
		{Date: now.AddDate(0, 0, -4), Domain: advice.DomainFitness},
		{Date: now.AddDate(0, 0, -1), Domain: advice.DomainFitness},
	}

	gen := &staticGenerator{resp: &advice.AdviceResponse{
		Greeting:         "Good morning, Alex!",
		Condition:        advice.Condition{Summary: "Steady.", Detail: "Within your usual range."},
		ConditionInsight: "A short walk would help.",
		ClosingMessage:   "Enjoy your day.",
		DailyTry:         advice.DailyTry{Title: "Stretch break", Summary: "Stretch for five minutes.", Detail: "Loosens the afternoon slump."},
	}}
	h := testHandlers(store, gen)

	body := `{"latitude": 52.52, "longitude": 13.4, "local_time": "2026-08-28T08:30:00Z"}`
	rec := doRequest(h.DailyAdviceHandler, http.MethodPost, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result geminiservice.DailyAdviceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, advice.DomainEnergy, result.Domain, "fitness is inside the look-back window")
	assert.False(t, result.Fallback)

	history := store.tries["u1"]
	assert.Equal(t, advice.DomainEnergy, history[len(history)-1].Domain, "the delivered try is recorded")
}

func TestDailyAdviceHandlerConflictWithoutSnapshot(t *testing.T) {
	store := newMemStore()
	store.profiles["u1"] = advice.UserProfile{
		Nickname: "Alex", Age: 28, WeightKg: 70, HeightCm: 175,
		Gender:    advice.GenderUnspecified,
		Interests: []advice.Domain{advice.DomainSleep},
	}
	h := testHandlers(store, &staticGenerator{})

	rec := doRequest(h.DailyAdviceHandler, http.MethodPost, `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no snapshot stored yet")
}

func TestGetTriesHandlerReturnsWindow(t *testing.T) {
	store := newMemStore()
	store.tries["u1"] = advice.TryHistory{
		{Date: time.Now().AddDate(0, 0, -2), Domain: advice.DomainSleep},
	}
	h := testHandlers(store, &staticGenerator{})

	rec := doRequest(h.GetTriesHandler, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, advice.TryWindowDays, resp.WindowDays)
	assert.Len(t, resp.Tries, 1)
}
