package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

// ExportFormat is the file format of an export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ParseExportFormat converts a raw format name into an ExportFormat.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(raw)); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", domain.Invalid("format", "must be csv or json")
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

var csvHeader = []string{"Decision ID", "Timestamp", "Decision", "Confidence", "Source", "Reasoning", "Outcome", "Tags"}

// Export is a snapshot of decisions taken for download.
type Export struct {
	At        time.Time
	Decisions []domain.Decision
}

// Export collects every decision matching the filter, newest first, with steps.
func (s *Service) Export(ctx context.Context, filter domain.DecisionFilter) (*Export, error) {
	decisions, err := s.store.ListDecisions(ctx, filter, domain.SortDesc)
	if err != nil {
		return nil, fmt.Errorf("failed to export decisions: %w", err)
	}
	s.logger.InfoContext(ctx, "decisions exported", "count", len(decisions))
	return &Export{At: s.clock(), Decisions: decisions}, nil
}

// Filename returns the attachment name, e.g. decisions_20260102_030405.csv.
func (e *Export) Filename(format ExportFormat) string {
	return fmt.Sprintf("decisions_%s.%s", e.At.Format("20060102_150405"), format)
}

// Write encodes the export in the given format.
func (e *Export) Write(w io.Writer, format ExportFormat) error {
	if format == FormatJSON {
		return e.WriteJSON(w)
	}
	return e.WriteCSV(w)
}

// WriteCSV writes one row per decision under a fixed header.
func (e *Export) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range e.Decisions {
		record := []string{
			d.DecisionID,
			d.Timestamp.UTC().Format(time.RFC3339Nano),
			d.Decision,
			strconv.FormatFloat(d.Confidence, 'f', -1, 64),
			string(d.Source),
			d.Reasoning,
			d.Outcome,
			strings.Join(d.Tags, ","),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the export document indented by two spaces.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(e.Document())
}

// Document converts the export into its structured form.
func (e *Export) Document() domain.ExportDocument {
	doc := domain.ExportDocument{
		ExportDate:     e.At.UTC().Format(time.RFC3339Nano),
		TotalDecisions: len(e.Decisions),
		Decisions:      make([]domain.ExportDecision, len(e.Decisions)),
	}
	for i, d := range e.Decisions {
		out := domain.ExportDecision{
			DecisionID:  d.DecisionID,
			Timestamp:   d.Timestamp.UTC().Format(time.RFC3339Nano),
			InputData:   d.InputData,
			SystemState: d.SystemState,
			Reasoning:   d.Reasoning,
			Decision:    d.Decision,
			Confidence:  d.Confidence,
			Source:      d.Source,
			Outcome:     domain.OptionalText(d.Outcome),
			OutcomeData: d.OutcomeData,
			Tags:        d.Tags,
			Steps:       make([]domain.ExportStep, len(d.Steps)),
		}
		for j, st := range d.Steps {
			out.Steps[j] = domain.ExportStep{
				StepOrder: st.StepOrder,
				StepType:  st.StepType,
				Content:   st.Content,
				Timestamp: st.Timestamp.UTC().Format(time.RFC3339Nano),
				Metadata:  st.StepMetadata,
			}
		}
		doc.Decisions[i] = out
	}
	return doc
}
