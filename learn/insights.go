package learn

import (
	"context"
	"sort"

	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/logger"
)

const (
	insightPatterns = 10
	insightFailures = 10
)

// Patterns returns the user's patterns, most successful first.
func (e *Engine) Patterns(ctx context.Context, userID int64) []Pattern {
	m, _ := load[Pattern](ctx, e, userPatternsKey(userID))
	out := make([]Pattern, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessCount != out[j].SuccessCount {
			return out[i].SuccessCount > out[j].SuccessCount
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ContextEntries returns the user's context table ordered by key.
func (e *Engine) ContextEntries(ctx context.Context, userID int64) []ContextEntry {
	m, _ := load[ContextEntry](ctx, e, userContextKey(userID))
	out := make([]ContextEntry, 0, len(m))
	for _, ce := range m {
		out = append(out, ce)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// GlobalStats returns the shared command table, most used first.
func (e *Engine) GlobalStats(ctx context.Context) []CommandStat {
	m, _ := load[CommandStat](ctx, e, globalKey)
	out := make([]CommandStat, 0, len(m))
	for _, st := range m {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].Hash < out[j].Hash
	})
	return out
}

// Failures returns retained failure records, most frequent first.
func (e *Engine) Failures(ctx context.Context) []FailureRecord {
	m, _ := load[FailureRecord](ctx, e, failuresKey)
	out := make([]FailureRecord, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Hash < out[j].Hash
	})
	return out
}

// EntityAccessCounts returns how often each entity type appeared in a
// successful command within the tenant.
func (e *Engine) EntityAccessCounts(ctx context.Context, tenantID int64) map[entity.Type]int {
	m, _ := load[int](ctx, e, accessKey(tenantID))
	out := make(map[entity.Type]int, len(m))
	for k, n := range m {
		out[entity.Type(k)] = n
	}
	return out
}

// Insights summarizes the user's top patterns, the most failing commands
// and the tenant's entity access counts.
func (e *Engine) Insights(ctx context.Context, userID, tenantID int64) Insights {
	patterns := e.Patterns(ctx, userID)
	if len(patterns) > insightPatterns {
		patterns = patterns[:insightPatterns]
	}
	failures := e.Failures(ctx)
	if len(failures) > insightFailures {
		failures = failures[:insightFailures]
	}
	return Insights{
		TopPatterns:     patterns,
		FailingCommands: failures,
		EntityAccess:    e.EntityAccessCounts(ctx, tenantID),
	}
}

// Clear forgets the user's patterns and context table.
func (e *Engine) Clear(ctx context.Context, userID int64) {
	for _, key := range []string{userPatternsKey(userID), userContextKey(userID)} {
		if err := e.cache.Forget(ctx, key); err != nil {
			e.log(ctx).Warnw("failed to clear learning state", logger.FieldCacheKey, key, logger.FieldError, err)
		}
	}
}

// ClearAll drops every learning entry. Backends without pattern eviction
// are flushed entirely. Failures are logged, never returned.
func (e *Engine) ClearAll(ctx context.Context) {
	n, err := cache.ForgetMatching(ctx, e.cache, globalPattern, true)
	if err != nil {
		e.log(ctx).Warnw("failed to clear learning state", logger.FieldError, err)
		return
	}
	e.log(ctx).Infow("cleared learning state", logger.FieldCount, n)
}
