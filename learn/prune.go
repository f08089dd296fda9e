package learn

import (
	"sort"
	"time"
)

// prunePatterns keeps the PatternCapacity patterns with the highest
// retention score, success count plus RecencyBonus when used inside
// RecentWindow. Ties evict the least recently used, then by key.
func (e *Engine) prunePatterns(patterns map[string]Pattern, now time.Time) map[string]Pattern {
	limit := e.cfg.PatternCapacity
	if limit <= 0 || len(patterns) <= limit {
		return patterns
	}
	ranked := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := e.retention(ranked[i], now), e.retention(ranked[j], now)
		if si != sj {
			return si < sj
		}
		if !ranked[i].LastUsed.Equal(ranked[j].LastUsed) {
			return ranked[i].LastUsed.Before(ranked[j].LastUsed)
		}
		return ranked[i].Key < ranked[j].Key
	})
	for _, p := range ranked[:len(ranked)-limit] {
		delete(patterns, p.Key)
	}
	return patterns
}

func (e *Engine) retention(p Pattern, now time.Time) float64 {
	score := float64(p.SuccessCount)
	if now.Sub(p.LastUsed) <= e.cfg.RecentWindow {
		score += e.cfg.RecencyBonus
	}
	return score
}

func (e *Engine) pruneContext(entries map[string]ContextEntry, now time.Time) map[string]ContextEntry {
	if e.cfg.ContextRetention <= 0 {
		return entries
	}
	for k, ce := range entries {
		if now.Sub(ce.LastUsed) > e.cfg.ContextRetention {
			delete(entries, k)
		}
	}
	return entries
}

// pruneGlobal keeps the GlobalCapacity most used commands.
func (e *Engine) pruneGlobal(stats map[string]CommandStat) map[string]CommandStat {
	limit := e.cfg.GlobalCapacity
	if limit <= 0 || len(stats) <= limit {
		return stats
	}
	ranked := make([]CommandStat, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, st)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].UsageCount != ranked[j].UsageCount {
			return ranked[i].UsageCount > ranked[j].UsageCount
		}
		if !ranked[i].LastUsed.Equal(ranked[j].LastUsed) {
			return ranked[i].LastUsed.After(ranked[j].LastUsed)
		}
		return ranked[i].Hash < ranked[j].Hash
	})
	for _, st := range ranked[limit:] {
		delete(stats, st.Hash)
	}
	return stats
}

func (e *Engine) pruneFailures(failures map[string]FailureRecord, now time.Time) map[string]FailureRecord {
	if e.cfg.FailureRetention <= 0 {
		return failures
	}
	for k, rec := range failures {
		if now.Sub(rec.LastSeen) > e.cfg.FailureRetention {
			delete(failures, k)
		}
	}
	return failures
}
