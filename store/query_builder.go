package store

import (
	"strings"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
)

// queryBuilder accumulates SQL WHERE clauses and parameters for entity queries
type queryBuilder struct {
	whereClauses []string
	args         []interface{}
}

// addClause appends a WHERE clause with its arguments
func (qb *queryBuilder) addClause(clause string, args ...interface{}) {
	qb.whereClauses = append(qb.whereClauses, clause)
	qb.args = append(qb.args, args...)
}

// build returns the WHERE clauses joined with AND
func (qb *queryBuilder) build() string {
	return strings.Join(qb.whereClauses, " AND ")
}

// buildScope restricts to one type within one tenant, optionally one client
func (qb *queryBuilder) buildScope(t entity.Type, tenantID, clientID int64) {
	qb.addClause("entity_type = ?", string(t))
	qb.addClause("tenant_id = ?", tenantID)
	if clientID != 0 {
		qb.addClause("client_id = ?", clientID)
	}
}

// buildTermFilter creates case-insensitive LIKE clauses across fields (OR logic).
// Field names are checked against the searchable column whitelist.
func (qb *queryBuilder) buildTermFilter(fields []string, term string, match Match) error {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return nil
	}

	var pattern string
	switch match {
	case MatchExact:
		pattern = escapeLikePattern(term)
	case MatchPrefix:
		pattern = escapeLikePattern(term) + "%"
	default:
		pattern = "%" + escapeLikePattern(term) + "%"
	}

	clauses := make([]string, len(fields))
	for i, f := range fields {
		if !entity.IsSearchableField(f) {
			return errors.NewInvalidRequestError("field %q is not searchable", f)
		}
		clauses[i] = f + " LIKE ? COLLATE NOCASE ESCAPE '\\'"
		qb.args = append(qb.args, pattern)
	}
	qb.whereClauses = append(qb.whereClauses, "("+strings.Join(clauses, " OR ")+")")
	return nil
}

// buildCodeFilter matches any of the candidate codes
func (qb *queryBuilder) buildCodeFilter(codes []string) {
	placeholders := make([]string, len(codes))
	for i, c := range codes {
		placeholders[i] = "?"
		qb.args = append(qb.args, c)
	}
	qb.whereClauses = append(qb.whereClauses, "code COLLATE NOCASE IN ("+strings.Join(placeholders, ", ")+")")
}

// escapeLikePattern escapes special characters in LIKE patterns for SQL ESCAPE clause
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
