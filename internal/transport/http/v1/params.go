package v1

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

const (
	defaultOverviewDays = 30
	defaultTraceDays    = 7
)

// queryInt reads an optional integer parameter bounded to [min, max].
func queryInt(c echo.Context, name string, def, min, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer")
	}
	if v < min || v > max {
		return 0, domain.Invalid(name, "must be between %d and %d", min, max)
	}
	return v, nil
}

// queryConfidence reads an optional confidence bound.
func queryConfidence(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.Invalid(name, "must be a number")
	}
	if err := domain.ValidateConfidence(name, v); err != nil {
		return nil, err
	}
	return &v, nil
}

func querySource(c echo.Context) (domain.Source, error) {
	raw := c.QueryParam("source")
	if raw == "" {
		return "", nil
	}
	source, ok := domain.ParseSource(raw)
	if !ok {
		return "", domain.Invalid("source", "must be one of rule, llm, hybrid, manual")
	}
	return source, nil
}

// queryTime accepts RFC 3339 timestamps or bare dates, which mean midnight UTC.
func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Invalid(name, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
}

// exportFilter reads the filters accepted by the export endpoints.
func exportFilter(c echo.Context) (domain.DecisionFilter, error) {
	var f domain.DecisionFilter
	var err error
	if f.Source, err = querySource(c); err != nil {
		return f, err
	}
	if f.MinConfidence, err = queryConfidence(c, "min_confidence"); err != nil {
		return f, err
	}
	return f, nil
}

// listQuery reads the filter, sort and pagination of a decision listing.
func listQuery(c echo.Context) (domain.ListQuery, error) {
	var q domain.ListQuery
	var err error

	if q.Filter, err = exportFilter(c); err != nil {
		return q, err
	}
	if q.Filter.MaxConfidence, err = queryConfidence(c, "max_confidence"); err != nil {
		return q, err
	}
	q.Filter.Tag = c.QueryParam("tag")
	q.Filter.Search = c.QueryParam("search")
	q.Filter.SearchScope = domain.SearchAll
	if q.Filter.Since, err = queryTime(c, "start_date"); err != nil {
		return q, err
	}
	if q.Filter.Until, err = queryTime(c, "end_date"); err != nil {
		return q, err
	}

	sort, ok := domain.ParseSortOrder(c.QueryParam("sort"))
	if !ok {
		return q, domain.Invalid("sort", "must be asc or desc")
	}
	q.Sort = sort

	if q.Limit, err = queryInt(c, "limit", domain.DefaultLimit, 1, domain.MaxLimit); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(c, "offset", 0, 0, int(^uint(0)>>1)); err != nil {
		return q, err
	}
	return q, nil
}

func queryDays(c echo.Context, def int) (int, error) {
	return queryInt(c, "days", def, 1, domain.MaxWindowDays)
}
