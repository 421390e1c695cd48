// Package gaql builds Google Ads Query Language strings from validated parts.
package gaql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidID is returned for identifiers that are not plain digits.
var ErrInvalidID = errors.New("invalid id")

// Query accumulates the clauses of one GAQL statement.
type Query struct {
	fields   []string
	resource string
	where    []string
	orderBy  []string
	limit    int
}

// Select starts a query with the given fields.
func Select(fields ...string) *Query {
	return &Query{fields: fields}
}

// From sets the resource being queried.
func (q *Query) From(resource string) *Query {
	q.resource = resource
	return q
}

// Where adds a condition joined with AND. Empty conditions are ignored.
func (q *Query) Where(cond string) *Query {
	if c := strings.TrimSpace(cond); c != "" {
		q.where = append(q.where, c)
	}
	return q
}

// WhereIf adds cond only when ok is true.
func (q *Query) WhereIf(ok bool, cond string) *Query {
	if ok {
		return q.Where(cond)
	}
	return q
}

// OrderBy appends an ordering expression such as "metrics.impressions DESC".
func (q *Query) OrderBy(expr string) *Query {
	if e := strings.TrimSpace(expr); e != "" {
		q.orderBy = append(q.orderBy, e)
	}
	return q
}

// Limit caps the number of rows. Zero means no LIMIT clause.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// String renders the statement on a single line.
func (q *Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.resource)
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}
	if q.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.limit))
	}
	return b.String()
}

// ID validates a numeric resource id for interpolation.
func ID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" || !allDigits(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// IDList validates ids and renders them as a parenthesised IN list.
func IDList(raws []string) (string, error) {
	if len(raws) == 0 {
		return "", fmt.Errorf("%w: empty list", ErrInvalidID)
	}
	ids := make([]string, 0, len(raws))
	for _, r := range raws {
		id, err := ID(r)
		if err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	return "(" + strings.Join(ids, ", ") + ")", nil
}

// CustomerID normalises "123-456-7890" to "1234567890".
func CustomerID(raw string) (string, error) {
	return ID(strings.ReplaceAll(strings.TrimSpace(raw), "-", ""))
}

// Literal quotes s as a GAQL string literal.
func Literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// Enum validates an enum token (A-Z, 0-9, underscore) and upper-cases it.
func Enum(raw string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return "", fmt.Errorf("empty enum value")
	}
	for _, r := range v {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return "", fmt.Errorf("invalid enum value %q", raw)
		}
	}
	return v, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
