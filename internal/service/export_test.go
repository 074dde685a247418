package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

func seedExport(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	svc, _, clock := newTestService(t)
	sequentialIDs(svc)

	refund := refundRequest()
	refund.Reasoning = `Premium customer, amount "79.99" within limit`
	refund.Outcome = "Refund processed"
	refund.OutcomeData = json.RawMessage(`{"refund_id":"ref_1"}`)
	refund.Tags = []string{"refund", "premium"}
	createAt(t, svc, clock, testNow, refund)

	escalate := refundRequest()
	escalate.Reasoning = "Legal keywords detected"
	escalate.Decision = "escalate_to_human"
	escalate.Confidence = domain.Float(0.98)
	createAt(t, svc, clock, testNow.Add(time.Minute), escalate)

	clock.now = time.Date(2026, 5, 21, 8, 9, 10, 0, time.UTC)
	return svc, clock
}

func TestExportCSVGolden(t *testing.T) {
	svc, _ := seedExport(t)

	export, err := svc.Export(context.Background(), domain.DecisionFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "export_csv", buf.Bytes())
}

func TestExportJSONDocument(t *testing.T) {
	svc, _ := seedExport(t)

	export, err := svc.Export(context.Background(), domain.DecisionFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, FormatJSON))
	assert.Contains(t, buf.String(), "\n  \"export_date\"")

	var doc struct {
		ExportDate     string `json:"export_date"`
		TotalDecisions int    `json:"total_decisions"`
		Decisions      []struct {
			DecisionID  string          `json:"decision_id"`
			Timestamp   string          `json:"timestamp"`
			Outcome     *string         `json:"outcome"`
			OutcomeData json.RawMessage `json:"outcome_data"`
			Tags        []string        `json:"tags"`
			Steps       []struct {
				StepOrder int             `json:"step_order"`
				StepType  string          `json:"step_type"`
				Timestamp string          `json:"timestamp"`
				Metadata  json.RawMessage `json:"metadata"`
			} `json:"steps"`
		} `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2026-05-21T08:09:10Z", doc.ExportDate)
	assert.Equal(t, 2, doc.TotalDecisions)
	require.Len(t, doc.Decisions, 2)

	latest := doc.Decisions[0]
	assert.Equal(t, "dec_000000000002", latest.DecisionID)
	assert.Nil(t, latest.Outcome)
	assert.True(t, len(latest.OutcomeData) == 0 || string(latest.OutcomeData) == "null")
	assert.Nil(t, latest.Tags)
	require.Len(t, latest.Steps, 4)

	first := doc.Decisions[1]
	require.NotNil(t, first.Outcome)
	assert.Equal(t, "Refund processed", *first.Outcome)
	assert.Equal(t, "2026-05-20T15:30:00Z", first.Timestamp)
	require.Len(t, first.Steps, 5)
	for i, st := range first.Steps {
		assert.Equal(t, i, st.StepOrder)
	}
	assert.Equal(t, "input", first.Steps[0].StepType)
	assert.Equal(t, "2026-05-20T15:30:00.4Z", first.Steps[4].Timestamp)
	assert.JSONEq(t, `{"refund_id":"ref_1"}`, string(first.Steps[4].Metadata))
}

func TestExportFilter(t *testing.T) {
	svc, _ := seedExport(t)

	export, err := svc.Export(context.Background(), domain.DecisionFilter{MinConfidence: domain.Float(0.97)})
	require.NoError(t, err)
	require.Len(t, export.Decisions, 1)
	assert.Equal(t, "escalate_to_human", export.Decisions[0].Decision)

	export, err = svc.Export(context.Background(), domain.DecisionFilter{Source: domain.SourceLLM})
	require.NoError(t, err)
	assert.Empty(t, export.Decisions)
	assert.Equal(t, 0, export.Document().TotalDecisions)
}

func TestExportFilename(t *testing.T) {
	export := &Export{At: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	assert.Equal(t, "decisions_20260102_030405.csv", export.Filename(FormatCSV))
	assert.Equal(t, "decisions_20260102_030405.json", export.Filename(FormatJSON))
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.Equal(t, "application/json", f.ContentType())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())

	_, err = ParseExportFormat("xml")
	assert.Error(t, err)
}
