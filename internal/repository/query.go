package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

const decisionColumns = `d.decision_id, d.timestamp, d.input_data, d.system_state, d.reasoning, d.decision,
	d.confidence, d.source, d.outcome, d.outcome_data, d.tags`

const stepColumns = `s.decision_id, s.step_order, s.step_type, s.timestamp, s.content, s.step_metadata`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where renders the filter as a WHERE clause over the decisions table aliased d.
func (s *SQLStore) where(f domain.DecisionFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Source != "" {
		conds = append(conds, "d.source = ?")
		args = append(args, string(f.Source))
	}
	if f.MinConfidence != nil {
		conds = append(conds, "d.confidence >= ?")
		args = append(args, *f.MinConfidence)
	}
	if f.MaxConfidence != nil {
		conds = append(conds, "d.confidence <= ?")
		args = append(args, *f.MaxConfidence)
	}
	if f.ConfidenceBelow != nil {
		conds = append(conds, "d.confidence < ?")
		args = append(args, *f.ConfidenceBelow)
	}
	if f.Tag != "" {
		conds = append(conds, s.dialect.tagExpr("d.tags"))
		args = append(args, f.Tag)
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		columns := []string{"d.reasoning", "d.decision"}
		if f.SearchScope == domain.SearchAll {
			columns = append(columns, "COALESCE(d.outcome, '')")
		}
		parts := make([]string, len(columns))
		for i, col := range columns {
			parts[i] = fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, s.dialect.foldExpr(col), s.dialect.foldExpr("?"))
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}
	if f.Since != nil {
		conds = append(conds, "d.timestamp >= ?")
		args = append(args, f.Since.UTC())
	}
	if f.Until != nil {
		conds = append(conds, "d.timestamp < ?")
		args = append(args, f.Until.UTC())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderBy sorts by timestamp, breaking ties by identifier so results are stable.
func orderBy(sort domain.SortOrder) string {
	if sort == domain.SortAsc {
		return " ORDER BY d.timestamp ASC, d.decision_id ASC"
	}
	return " ORDER BY d.timestamp DESC, d.decision_id DESC"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDecision(row rowScanner) (domain.Decision, error) {
	var d domain.Decision
	var inputData, source string
	var systemState, outcome, outcomeData, tags sql.NullString
	if err := row.Scan(&d.DecisionID, &d.Timestamp, &inputData, &systemState, &d.Reasoning, &d.Decision,
		&d.Confidence, &source, &outcome, &outcomeData, &tags); err != nil {
		return domain.Decision{}, err
	}

	d.Timestamp = d.Timestamp.UTC()
	d.Source = domain.Source(source)
	d.InputData = json.RawMessage(inputData)
	if systemState.Valid {
		d.SystemState = json.RawMessage(systemState.String)
	}
	if outcome.Valid {
		d.Outcome = outcome.String
	}
	if outcomeData.Valid {
		d.OutcomeData = json.RawMessage(outcomeData.String)
	}
	if tags.Valid {
		parsed, err := decodeTags(tags.String)
		if err != nil {
			return domain.Decision{}, fmt.Errorf("decision %s: %w", d.DecisionID, err)
		}
		d.Tags = parsed
	}
	return d, nil
}

func scanStep(row rowScanner) (string, domain.Step, error) {
	var decisionID, stepType string
	var st domain.Step
	var metadata sql.NullString
	if err := row.Scan(&decisionID, &st.StepOrder, &stepType, &st.Timestamp, &st.Content, &metadata); err != nil {
		return "", domain.Step{}, err
	}
	st.Timestamp = st.Timestamp.UTC()
	st.StepType = domain.StepType(stepType)
	if metadata.Valid {
		st.StepMetadata = json.RawMessage(metadata.String)
	}
	return decisionID, st, nil
}

func encodeTags(tags []string) (sql.NullString, error) {
	if tags == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeTags(raw string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("invalid tags column: %w", err)
	}
	return tags, nil
}
