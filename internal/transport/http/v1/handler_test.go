package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/decision-timeline/internal/domain"
	"github.com/xiaot623/decision-timeline/internal/engine"
	"github.com/xiaot623/decision-timeline/internal/service"
	"github.com/xiaot623/decision-timeline/tests/helpers"
)

func newTestHandler(t *testing.T) (*echo.Echo, *Handler) {
	t.Helper()
	store := helpers.NewTestSQLiteStore(t)
	rules, err := engine.NewRuleEngine(context.Background(), engine.DefaultRules)
	require.NoError(t, err)

	h := NewHandler(service.New(store, service.Options{}), rules)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

const refundBody = `{
	"input_data": {"request_type": "refund", "amount": 79.99},
	"system_state": {"user_tier": "premium"},
	"reasoning": "Premium customer within limit",
	"decision": "approve_refund",
	"confidence": 0.95,
	"source": "rule",
	"outcome": "Refund processed",
	"tags": ["refund", "premium"]
}`

func createDecision(t *testing.T, e *echo.Echo, body string) domain.Decision {
	t.Helper()
	rec := do(e, http.MethodPost, "/api/decisions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d domain.Decision
	decode(t, rec, &d)
	return d
}

func TestCreateDecision(t *testing.T) {
	e, _ := newTestHandler(t)

	d := createDecision(t, e, refundBody)
	assert.Regexp(t, `^dec_[0-9a-f]{12}$`, d.DecisionID)
	assert.Equal(t, domain.SourceRule, d.Source)
	assert.Equal(t, []string{"refund", "premium"}, d.Tags)
	require.Len(t, d.Steps, 6)
	assert.Equal(t, domain.StepTypeInput, d.Steps[0].StepType)
	assert.Equal(t, domain.StepTypeReasoning, d.Steps[1].StepType)
	assert.Equal(t, domain.StepTypeOutcome, d.Steps[5].StepType)
}

func TestCreateDecisionMalformedBody(t *testing.T) {
	e := echo.New()
	_, h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/decisions", strings.NewReader(`{"input_data":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.CreateDecision(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDecisionValidation(t *testing.T) {
	e, _ := newTestHandler(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing input", `{"reasoning":"r","decision":"d","confidence":0.5,"source":"rule"}`, "input_data"},
		{"confidence too high", `{"input_data":{},"reasoning":"r","decision":"d","confidence":1.5,"source":"rule"}`, "confidence"},
		{"unknown source", `{"input_data":{},"reasoning":"r","decision":"d","confidence":0.5,"source":"oracle"}`, "source"},
		{"empty reasoning", `{"input_data":{},"reasoning":"","decision":"d","confidence":0.5,"source":"rule"}`, "reasoning"},
		{"bad step type", `{"input_data":{},"reasoning":"r","decision":"d","confidence":0.5,"source":"rule","steps":[{"step_type":"guess","content":"x"}]}`, "steps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/decisions", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, tt.field, body["field"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetReplayDelete(t *testing.T) {
	e, _ := newTestHandler(t)
	d := createDecision(t, e, refundBody)

	rec := do(e, http.MethodGet, "/api/decisions/"+d.DecisionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Decision
	decode(t, rec, &got)
	assert.Equal(t, d.DecisionID, got.DecisionID)
	assert.Len(t, got.Steps, 6)

	rec = do(e, http.MethodGet, "/api/decisions/"+d.DecisionID+"/replay", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var replay struct {
		TotalSteps      int      `json:"total_steps"`
		DurationSeconds *float64 `json:"duration_seconds"`
	}
	decode(t, rec, &replay)
	assert.Equal(t, 6, replay.TotalSteps)
	require.NotNil(t, replay.DurationSeconds)
	assert.InDelta(t, 0.5, *replay.DurationSeconds, 1e-9)

	rec = do(e, http.MethodDelete, "/api/decisions/"+d.DecisionID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	for _, target := range []string{"/api/decisions/" + d.DecisionID, "/api/decisions/" + d.DecisionID + "/replay"} {
		rec = do(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
	rec = do(e, http.MethodDelete, "/api/decisions/"+d.DecisionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDecisionDirectContext(t *testing.T) {
	e := echo.New()
	_, h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/decisions/:decision_id")
	c.SetParamNames("decision_id")
	c.SetParamValues("dec_missing")

	require.NoError(t, h.GetDecision(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "decision not found")
}

func TestListDecisions(t *testing.T) {
	e, _ := newTestHandler(t)
	createDecision(t, e, refundBody)
	createDecision(t, e, `{"input_data":{"message":"legal"},"reasoning":"Legal keywords","decision":"escalate_to_human","confidence":0.6,"source":"llm","tags":["support"]}`)
	createDecision(t, e, `{"input_data":{},"reasoning":"No rule matched","decision":"manual_review_required","confidence":0.5,"source":"manual"}`)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 3},
		{"by source", "?source=llm", 1},
		{"min confidence", "?min_confidence=0.55", 2},
		{"max confidence", "?max_confidence=0.55", 1},
		{"tag", "?tag=refund", 1},
		{"search outcome", "?search=processed", 1},
		{"search case insensitive", "?search=LEGAL", 1},
		{"future start", "?start_date=2999-01-01", 0},
		{"past end", "?end_date=2000-01-01T00:00:00Z", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/api/decisions"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var page domain.DecisionPage
			decode(t, rec, &page)
			assert.Equal(t, tt.want, page.Total)
			assert.Len(t, page.Decisions, tt.want)
		})
	}
}

func TestListDecisionsPagination(t *testing.T) {
	e, _ := newTestHandler(t)
	for i := 0; i < 3; i++ {
		createDecision(t, e, refundBody)
	}

	rec := do(e, http.MethodGet, "/api/decisions?limit=2&offset=0&sort=asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.DecisionPage
	decode(t, rec, &page)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Len(t, page.Decisions, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, 6, page.Decisions[0].StepCount)

	rec = do(e, http.MethodGet, "/api/decisions?limit=2&offset=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = domain.DecisionPage{}
	decode(t, rec, &page)
	assert.Len(t, page.Decisions, 1)
	assert.False(t, page.HasMore)

	rec = do(e, http.MethodGet, "/api/decisions?offset=9223372036854775807", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page = domain.DecisionPage{}
	decode(t, rec, &page)
	assert.Empty(t, page.Decisions)
	assert.False(t, page.HasMore)
}

func TestDecisionWithoutOutcomeRendersNull(t *testing.T) {
	e, _ := newTestHandler(t)
	d := createDecision(t, e, `{"input_data":{},"reasoning":"No rule matched","decision":"manual_review_required","confidence":0.5,"source":"manual"}`)

	for _, target := range []string{"/api/decisions/" + d.DecisionID, "/api/decisions"} {
		rec := do(e, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"outcome":null`, target)
	}
}

func TestListDecisionsInvalidParams(t *testing.T) {
	e, _ := newTestHandler(t)

	tests := []struct {
		query string
		field string
	}{
		{"?limit=0", "limit"},
		{"?limit=501", "limit"},
		{"?limit=ten", "limit"},
		{"?offset=-1", "offset"},
		{"?source=oracle", "source"},
		{"?min_confidence=2", "min_confidence"},
		{"?max_confidence=x", "max_confidence"},
		{"?start_date=yesterday", "start_date"},
		{"?sort=sideways", "sort"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/api/decisions"+tt.query, "")
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			var body map[string]string
			decode(t, rec, &body)
			assert.Equal(t, tt.field, body["field"])
		})
	}
}

func TestExportCSV(t *testing.T) {
	e, _ := newTestHandler(t)
	createDecision(t, e, refundBody)

	rec := do(e, http.MethodGet, "/api/decisions/export/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))
	assert.Regexp(t, `^attachment; filename=decisions_\d{8}_\d{6}\.csv$`, rec.Header().Get(echo.HeaderContentDisposition))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Decision ID,Timestamp,Decision,Confidence,Source,Reasoning,Outcome,Tags", lines[0])
	assert.Contains(t, lines[1], `"refund,premium"`)
}

func TestExportJSON(t *testing.T) {
	e, _ := newTestHandler(t)
	createDecision(t, e, refundBody)
	createDecision(t, e, `{"input_data":{},"reasoning":"r","decision":"d","confidence":0.2,"source":"llm"}`)

	rec := do(e, http.MethodGet, "/api/decisions/export/json?source=rule", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `\.json$`, rec.Header().Get(echo.HeaderContentDisposition))

	var doc domain.ExportDocument
	decode(t, rec, &doc)
	assert.Equal(t, 1, doc.TotalDecisions)
	require.Len(t, doc.Decisions, 1)
	assert.Len(t, doc.Decisions[0].Steps, 6)

	rec = do(e, http.MethodGet, "/api/decisions/export/json?min_confidence=-1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatsEndpoints(t *testing.T) {
	e, _ := newTestHandler(t)
	createDecision(t, e, refundBody)

	rec := do(e, http.MethodGet, "/api/stats/overview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var overview domain.StatsOverview
	decode(t, rec, &overview)
	assert.Equal(t, 30, overview.PeriodDays)
	assert.Equal(t, 1, overview.TotalDecisions)
	assert.Equal(t, 1, overview.ConfidenceRanges.High)
	assert.Len(t, overview.DailyTrend, 7)
	assert.Equal(t, 100.0, overview.SourceDistribution[domain.SourceRule].Percentage)

	rec = do(e, http.MethodGet, "/api/stats/timeline?days=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var timeline domain.StatsTimeline
	decode(t, rec, &timeline)
	assert.Equal(t, 3, timeline.PeriodDays)
	require.Len(t, timeline.Data, 3)
	assert.Equal(t, 1, timeline.Data[2].Count)

	for _, target := range []string{"/api/stats/overview?days=0", "/api/stats/timeline?days=366"} {
		rec = do(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
	}
}

func TestTraceEndpoints(t *testing.T) {
	e, _ := newTestHandler(t)
	createDecision(t, e, refundBody)
	createDecision(t, e, `{"input_data":{},"reasoning":"Unclear request","decision":"manual_review_required","confidence":0.5,"source":"manual","tags":["review"]}`)

	rec := do(e, http.MethodGet, "/api/traces/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.TraceStats
	decode(t, rec, &stats)
	assert.Equal(t, 7, stats.PeriodDays)
	assert.Equal(t, 2, stats.TotalDecisions)
	assert.Equal(t, 1, stats.LowConfidenceCount)
	assert.Equal(t, 50.0, stats.LowConfidencePercentage)

	rec = do(e, http.MethodGet, "/api/traces/timeline", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var timeline domain.TraceTimeline
	decode(t, rec, &timeline)
	require.Len(t, timeline.Timeline, 1)
	assert.Equal(t, 2, timeline.Timeline[0].Count)

	rec = do(e, http.MethodGet, "/api/traces/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tags domain.TagList
	decode(t, rec, &tags)
	assert.Equal(t, []string{"premium", "refund", "review"}, tags.Tags)
	assert.Equal(t, 3, tags.TotalUniqueTags)
}

func TestSearchTraces(t *testing.T) {
	e, _ := newTestHandler(t)
	createDecision(t, e, refundBody)

	rec := do(e, http.MethodGet, "/api/traces/search?query=premium", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var results domain.SearchResults
	decode(t, rec, &results)
	assert.Equal(t, "premium", results.Query)
	assert.Equal(t, 1, results.TotalResults)

	rec = do(e, http.MethodGet, "/api/traces/search?query=processed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	results = domain.SearchResults{}
	decode(t, rec, &results)
	assert.Equal(t, 0, results.TotalResults)

	for _, target := range []string{"/api/traces/search", "/api/traces/search?query=%20", "/api/traces/search?query=x&limit=101"} {
		rec = do(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
	}
}

func TestEngineDecide(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := do(e, http.MethodPost, "/api/engine/decide", `{
		"input_data": {"request_type": "refund", "amount": 50},
		"system_state": {"user_tier": "premium", "refund_count": 0}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d domain.Decision
	decode(t, rec, &d)
	assert.Equal(t, "approve_refund", d.Decision)
	assert.Equal(t, 0.95, d.Confidence)
	assert.Equal(t, []string{"refund", "low_value"}, d.Tags)

	rec = do(e, http.MethodGet, "/api/decisions/"+d.DecisionID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/api/engine/decide", `{"system_state": {}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodPost, "/api/engine/decide", `{"input_data": [1, 2]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEngineRouteDisabledWithoutDecider(t *testing.T) {
	store := helpers.NewTestSQLiteStore(t)
	e := echo.New()
	NewHandler(service.New(store, service.Options{}), nil).RegisterRoutes(e)

	rec := do(e, http.MethodPost, "/api/engine/decide", `{"input_data": {}}`)
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, rec.Code)
}

func TestRootAndHealth(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := do(e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Decision Timeline API")

	rec = do(e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0"}`, rec.Body.String())
}
