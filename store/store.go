// Package store is the domain data store the resolver reads: tenant-scoped
// lookups by id and code, and text search across an entity type's
// searchable fields.
package store

import (
	"context"

	"github.com/teranos/palette/entity"
)

// Match selects how Query.Term is compared against field values.
type Match int

const (
	// MatchSubstring finds the term anywhere in the field
	MatchSubstring Match = iota
	MatchPrefix
	MatchExact
)

func (m Match) String() string {
	switch m {
	case MatchPrefix:
		return "prefix"
	case MatchExact:
		return "exact"
	}
	return "substring"
}

// Query describes a tenant-scoped text search over one entity type.
type Query struct {
	Type     entity.Type
	TenantID int64
	ClientID int64    // 0: any client
	Term     string   // compared case-insensitively; empty matches everything
	Fields   []string // defaults to the type's searchable fields
	Match    Match
	Limit    int
	Offset   int
	Recent   bool // most recently updated first instead of insertion order
}

// Store is the read contract the resolver consumes. Lookups that find
// nothing return a nil entity and a nil error.
type Store interface {
	FindByID(ctx context.Context, t entity.Type, tenantID, id int64) (*entity.Entity, error)
	// FindByCode returns the first record whose code equals any of codes,
	// compared case-insensitively.
	FindByCode(ctx context.Context, t entity.Type, tenantID int64, codes []string) (*entity.Entity, error)
	Search(ctx context.Context, q Query) ([]entity.Entity, error)
}
