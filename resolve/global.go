package resolve

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/logger"
	"github.com/teranos/palette/store"
)

// SearchResults is the merged outcome of a global search.
type SearchResults struct {
	Query   string      `json:"query"`
	Items   []Candidate `json:"items"`
	Message string      `json:"message,omitempty"`
}

// Empty reports whether nothing matched.
func (s *SearchResults) Empty() bool {
	return len(s.Items) == 0
}

// searchParallelism caps concurrent per-type queries in a global search
const searchParallelism = 4

// NoResultsMessage is shown when a search matches nothing.
func NoResultsMessage(term string) string {
	return fmt.Sprintf("No results for %q", term)
}

// Search looks for term across the given entity types (all when empty),
// weights similarity by type priority and returns the best ResultLimit
// matches. Types are queried concurrently; a type whose query fails is
// logged and skipped.
func (r *Resolver) Search(ctx context.Context, term string, types []entity.Type, rctx entity.Context) *SearchResults {
	log := r.log(ctx)
	res := &SearchResults{Query: term}
	q := strings.TrimSpace(term)

	if q != "" && rctx.HasTenant() {
		if len(types) == 0 {
			types = entity.All()
		}
		now := r.now()
		perType := make([][]Candidate, len(types))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(searchParallelism)
		for i, t := range types {
			if !t.Valid() {
				log.Debugw("skipping unsupported entity type", logger.FieldEntityType, t)
				continue
			}
			g.Go(func() error {
				hits, err := r.searchType(gctx, t, q, rctx.TenantID)
				if err != nil {
					log.Warnw("global search skipped entity type", logger.FieldEntityType, t, logger.FieldError, err)
					return nil
				}
				for _, e := range hits {
					perType[i] = append(perType[i], score(q, e, rctx, now, t.Priority()))
				}
				return nil
			})
		}
		_ = g.Wait()
		// Merge in type order so ties rank the same on every run
		for _, cands := range perType {
			res.Items = append(res.Items, cands...)
		}
		rank(res.Items)
		if len(res.Items) > r.cfg.ResultLimit {
			res.Items = res.Items[:r.cfg.ResultLimit]
		}
	}

	if res.Empty() {
		res.Message = NoResultsMessage(term)
	}
	log.Debugw("global search",
		"term", term,
		logger.FieldCount, len(res.Items),
		logger.FieldTenantID, rctx.TenantID,
	)
	return res
}

// searchType returns the raw hits for one type. Hits are cached under the
// type's resolve prefix so Invalidate drops them with the type's resolutions.
func (r *Resolver) searchType(ctx context.Context, t entity.Type, term string, tenantID int64) ([]entity.Entity, error) {
	query := func(ctx context.Context) ([]entity.Entity, error) {
		return r.store.Search(ctx, store.Query{
			Type:     t,
			TenantID: tenantID,
			Term:     term,
			Limit:    r.cfg.PerTypeLimit,
		})
	}
	if r.cfg.CacheTTL <= 0 {
		return query(ctx)
	}
	key := fmt.Sprintf("%s%s:search:t%d:%s", cacheKeyPrefix, t, tenantID, strings.ToLower(term))
	return cache.Remember(ctx, r.cache, key, r.cfg.CacheTTL, query)
}
