package repository

import (
	"strconv"
	"strings"
)

// dialect captures the SQL differences between the supported engines.
type dialect struct {
	name          string
	driver        string
	timestampType string
	// dayExpr renders the UTC calendar day of a timestamp column as YYYY-MM-DD.
	dayExpr func(column string) string
	// tagExpr matches rows whose JSON tags array contains the bound value.
	tagExpr func(column string) string
	// foldExpr renders a Unicode case-folded form of a text expression.
	foldExpr func(expr string) string
}

var sqliteDialect = dialect{
	name:          "sqlite",
	driver:        sqliteFoldDriver,
	timestampType: "TIMESTAMP",
	dayExpr: func(column string) string {
		return "substr(" + column + ", 1, 10)"
	},
	tagExpr: func(column string) string {
		return "EXISTS (SELECT 1 FROM json_each(" + column + ") WHERE json_each.value = ?)"
	},
	foldExpr: func(expr string) string {
		return "fold(" + expr + ")"
	},
}

var postgresDialect = dialect{
	name:          "postgres",
	driver:        "pgx",
	timestampType: "TIMESTAMPTZ",
	dayExpr: func(column string) string {
		return "to_char(" + column + " AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	},
	tagExpr: func(column string) string {
		return "EXISTS (SELECT 1 FROM jsonb_array_elements_text(" + column + "::jsonb) AS t(tag) WHERE t.tag = ?)"
	},
	foldExpr: func(expr string) string {
		return "LOWER(" + expr + ")"
	},
}

// rebind rewrites '?' placeholders into the engine's native form.
func (d dialect) rebind(query string) string {
	if d.name != postgresDialect.name {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
