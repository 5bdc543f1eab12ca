// Package queryparse implements a minimal query-string grammar:
// "SELECT * FROM table [WHERE cond {AND cond}]", translating it directly
// into a table name and a predicate.List rather than building a general
// SQL statement AST.
package queryparse

import (
	"strconv"
	"strings"

	"github.com/kaedr/OgmaDB/internal/codec"
	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/dberrors"
	"github.com/kaedr/OgmaDB/internal/predicate"
)

// Query is the result of parsing a query string: the target table and the
// filter list to apply (predicate.List{{Op: predicate.All}} for a bare
// "SELECT * FROM table").
type Query struct {
	Table   string
	Filters predicate.List
}

// Parse parses a single query string into a Query.
func Parse(raw string) (Query, *dberrors.Error) {
	q := strings.TrimSpace(raw)
	q = strings.TrimSuffix(q, ";")
	q = strings.TrimSpace(q)
	if q == "" {
		return Query{}, dberrors.SchemaErrorf("queryparse: empty query")
	}

	upper := strings.ToUpper(q)
	if !strings.HasPrefix(upper, "SELECT") {
		return Query{}, dberrors.SchemaErrorf("queryparse: only SELECT is supported")
	}

	idxFrom := strings.Index(upper, "FROM")
	if idxFrom == -1 {
		return Query{}, dberrors.SchemaErrorf("queryparse: missing FROM")
	}

	projection := strings.TrimSpace(q[len("SELECT"):idxFrom])
	if projection != "*" {
		return Query{}, dberrors.SchemaErrorf("queryparse: only SELECT * is supported, got %q", projection)
	}

	rest := strings.TrimSpace(q[idxFrom+len("FROM"):])
	if rest == "" {
		return Query{}, dberrors.SchemaErrorf("queryparse: missing table name")
	}

	upperRest := strings.ToUpper(rest)
	idxWhere := strings.Index(upperRest, "WHERE")

	var table, wherePart string
	if idxWhere == -1 {
		table = strings.TrimSpace(rest)
	} else {
		table = strings.TrimSpace(rest[:idxWhere])
		wherePart = strings.TrimSpace(rest[idxWhere+len("WHERE"):])
	}
	if table == "" {
		return Query{}, dberrors.SchemaErrorf("queryparse: missing table name")
	}
	if strings.ContainsAny(table, " \t") {
		return Query{}, dberrors.SchemaErrorf("queryparse: invalid table name %q", table)
	}

	if wherePart == "" {
		return Query{Table: table, Filters: predicate.List{{Op: predicate.All}}}, nil
	}

	filters, err := parseConditions(wherePart)
	if err != nil {
		return Query{}, err
	}
	return Query{Table: table, Filters: filters}, nil
}

// parseConditions splits a WHERE clause on "AND" and parses each condition.
// The AND that separates a BETWEEN clause's bounds is rejoined with it.
func parseConditions(wherePart string) (predicate.List, *dberrors.Error) {
	clauses := splitOnKeyword(wherePart, "AND")
	if len(clauses) == 0 {
		return nil, dberrors.SchemaErrorf("queryparse: empty WHERE clause")
	}

	filters := make(predicate.List, 0, len(clauses))
	for i := 0; i < len(clauses); i++ {
		clause := strings.TrimSpace(clauses[i])
		upper := strings.ToUpper(clause)
		if strings.Contains(upper, " BETWEEN ") && !strings.Contains(upper, " AND ") && i+1 < len(clauses) {
			clause = clause + " AND " + strings.TrimSpace(clauses[i+1])
			i++
		}
		f, err := parseCondition(clause)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// parseCondition parses one "column op literal(s)" clause.
func parseCondition(s string) (predicate.Filter, *dberrors.Error) {
	upper := strings.ToUpper(s)

	switch {
	case strings.Contains(upper, " BETWEEN "):
		return parseBetween(s)
	case strings.Contains(upper, " IN "):
		return parseIn(s)
	default:
		return parseComparison(s)
	}
}

func parseBetween(s string) (predicate.Filter, *dberrors.Error) {
	upper := strings.ToUpper(s)
	idx := strings.Index(upper, " BETWEEN ")
	col := strings.TrimSpace(s[:idx])
	rest := strings.TrimSpace(s[idx+len(" BETWEEN "):])

	upperRest := strings.ToUpper(rest)
	idxAnd := strings.Index(upperRest, " AND ")
	if idxAnd == -1 {
		return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: BETWEEN requires ... AND ..., got %q", s)
	}

	loTok := strings.TrimSpace(rest[:idxAnd])
	hiTok := strings.TrimSpace(rest[idxAnd+len(" AND "):])

	lo, err := parseLiteral(loTok)
	if err != nil {
		return predicate.Filter{}, err
	}
	hi, err := parseLiteral(hiTok)
	if err != nil {
		return predicate.Filter{}, err
	}

	if col == "" {
		return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: BETWEEN missing column name")
	}
	return predicate.Filter{Op: predicate.Between, Column: col, Lo: lo, Hi: hi}, nil
}

func parseIn(s string) (predicate.Filter, *dberrors.Error) {
	upper := strings.ToUpper(s)
	idx := strings.Index(upper, " IN ")
	col := strings.TrimSpace(s[:idx])
	rest := strings.TrimSpace(s[idx+len(" IN "):])

	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: IN requires a parenthesised list, got %q", s)
	}
	inner := rest[1 : len(rest)-1]

	toks := splitCommaSeparated(inner)
	if len(toks) == 0 {
		return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: IN list is empty")
	}

	values := make([]coltype.Value, 0, len(toks))
	for _, tok := range toks {
		v, err := parseLiteral(strings.TrimSpace(tok))
		if err != nil {
			return predicate.Filter{}, err
		}
		values = append(values, v)
	}

	if col == "" {
		return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: IN missing column name")
	}
	return predicate.Filter{Op: predicate.In, Column: col, Values: values}, nil
}

// parseComparison parses "column op literal" for op in {=, >=, <=, >, <}.
// The != operator is recognised and rejected with an error.
func parseComparison(s string) (predicate.Filter, *dberrors.Error) {
	ops := []struct {
		token string
		op    predicate.Op
	}{
		{">=", predicate.GreaterThanEqualTo},
		{"<=", predicate.LessThanEqualTo},
		{"!=", predicate.EqualTo}, // rejected below
		{"=", predicate.EqualTo},
		{">", predicate.GreaterThan},
		{"<", predicate.LessThan},
	}

	for _, candidate := range ops {
		idx := strings.Index(s, candidate.token)
		if idx == -1 {
			continue
		}
		col := strings.TrimSpace(s[:idx])
		valTok := strings.TrimSpace(s[idx+len(candidate.token):])
		if col == "" || valTok == "" {
			return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: invalid condition %q", s)
		}

		val, err := parseLiteral(valTok)
		if err != nil {
			return predicate.Filter{}, err
		}

		if candidate.token == "!=" {
			// The predicate algebra has no NotEqualTo operator.
			return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: operator != is not supported")
		}

		return predicate.Filter{Op: candidate.op, Column: col, Value: val}, nil
	}

	return predicate.Filter{}, dberrors.SchemaErrorf("queryparse: no comparison operator found in %q", s)
}

// parseLiteral parses a single literal token: integers, 'quoted' text
// (packed into the fixed 8-byte Text cell form), and true/false.
func parseLiteral(tok string) (coltype.Value, *dberrors.Error) {
	s := strings.TrimSpace(tok)
	if s == "" {
		return coltype.Value{}, dberrors.SchemaErrorf("queryparse: empty literal")
	}

	upper := strings.ToUpper(s)
	if upper == "TRUE" {
		return coltype.Value{Type: coltype.Boolean, Bool: true}, nil
	}
	if upper == "FALSE" {
		return coltype.Value{Type: coltype.Boolean, Bool: false}, nil
	}

	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		inner := s[1 : len(s)-1]
		buf := make([]byte, codec.CellSize)
		copy(buf, inner)
		return coltype.Value{Type: coltype.Text, Text: string(buf)}, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return coltype.Value{Type: coltype.Integer, Int: i}, nil
	}

	return coltype.Value{}, dberrors.SchemaErrorf("queryparse: cannot parse literal %q", tok)
}

// splitOnKeyword splits s on a case-insensitive keyword with a single space
// on each side (e.g. " AND "), outside of any parenthesised group.
func splitOnKeyword(s string, keyword string) []string {
	upper := strings.ToUpper(s)
	sep := " " + keyword + " "
	depth := 0
	var parts []string
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && i+len(sep) <= len(upper) && upper[i:i+len(sep)] == sep {
			parts = append(parts, s[last:i])
			last = i + len(sep)
			i += len(sep) - 1
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// splitCommaSeparated splits a string on every comma, trimming each part and
// dropping empty ones. Commas inside quoted literals are not treated
// specially.
func splitCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
