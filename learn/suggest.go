package learn

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/logger"
)

// Per-source score bonuses
const (
	personalBonus   = 0.2
	contextualBonus = 0.15
	globalBonus     = 0.05

	prefixBonus   = 0.3
	maxUsageBonus = 0.2
)

// Suggest ranks commands for the partial input in rctx. Personal and
// contextual suggestions need an authenticated user; without one only
// global commands are offered. Cache failures yield fewer suggestions,
// never an error.
func (e *Engine) Suggest(ctx context.Context, partial string, rctx entity.Context) []Suggestion {
	partial = strings.ToLower(strings.TrimSpace(partial))
	var all []Suggestion

	if rctx.HasUser() {
		all = append(all, e.personal(ctx, rctx.UserID)...)
		all = append(all, e.contextual(ctx, rctx)...)
	}
	all = append(all, e.global(ctx)...)

	for i := range all {
		s := &all[i]
		if partial != "" && strings.HasPrefix(strings.ToLower(s.Command), partial) {
			s.Score += prefixBonus
		}
		s.Score += math.Min(maxUsageBonus, float64(s.UsageCount)/50)
		s.Score += sourceBonus(s.Source)
	}

	merged := dedupe(all)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if limit := e.cfg.SuggestionLimit; limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	e.log(ctx).Debugw("suggestions ranked",
		logger.FieldUserID, rctx.UserID,
		logger.FieldCount, len(merged))
	return merged
}

func (e *Engine) personal(ctx context.Context, userID int64) []Suggestion {
	patterns, ok := load[Pattern](ctx, e, userPatternsKey(userID))
	if !ok {
		return nil
	}
	now := e.now()
	var out []Suggestion
	for _, p := range patterns {
		rate := p.SuccessRate()
		if p.SuccessCount < e.cfg.MinPersonalSuccesses || rate <= e.cfg.PersonalMinRate {
			continue
		}
		frequency := math.Min(1, float64(p.SuccessCount)/10)
		days := now.Sub(p.LastUsed).Hours() / 24
		decay := math.Max(0.1, 1-days/30)
		out = append(out, Suggestion{
			Command:    Render(p.Intent, p.Entities, p.Modifiers),
			Score:      rate*0.6 + frequency*0.3 + decay*0.1,
			Source:     SourcePersonal,
			PatternKey: p.Key,
			UsageCount: p.Uses(),
		})
	}
	return out
}

func (e *Engine) contextual(ctx context.Context, rctx entity.Context) []Suggestion {
	entries, ok := load[ContextEntry](ctx, e, userContextKey(rctx.UserID))
	if !ok {
		return nil
	}
	prefix := rctx.LearningKey() + ":"
	var out []Suggestion
	for key, ce := range entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		display, ok := RenderKey(ce.PatternKey)
		if !ok {
			display = ce.Command
		}
		if display == "" {
			continue
		}
		out = append(out, Suggestion{
			Command:    display,
			Score:      math.Min(0.9, float64(ce.SuccessCount)/10),
			Source:     SourceContextual,
			PatternKey: ce.PatternKey,
			UsageCount: ce.SuccessCount,
		})
	}
	return out
}

func (e *Engine) global(ctx context.Context) []Suggestion {
	stats, ok := load[CommandStat](ctx, e, globalKey)
	if !ok {
		return nil
	}
	var out []Suggestion
	for _, st := range stats {
		rate := st.SuccessRate()
		if rate <= e.cfg.GlobalMinRate {
			continue
		}
		out = append(out, Suggestion{
			Command:    st.Command,
			Score:      rate * 0.7,
			Source:     SourceGlobal,
			UsageCount: st.UsageCount,
		})
	}
	return out
}

func sourceBonus(s Source) float64 {
	switch s {
	case SourcePersonal:
		return personalBonus
	case SourceContextual:
		return contextualBonus
	case SourceGlobal:
		return globalBonus
	}
	return 0
}

// dedupe keeps the best scored suggestion per display command. Input
// order is made deterministic first since state maps iterate randomly.
func dedupe(all []Suggestion) []Suggestion {
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Source != all[j].Source {
			return sourceRank(all[i].Source) < sourceRank(all[j].Source)
		}
		return all[i].Command < all[j].Command
	})
	best := make(map[string]int, len(all))
	out := make([]Suggestion, 0, len(all))
	for _, s := range all {
		key := strings.ToLower(s.Command)
		if i, ok := best[key]; ok {
			if s.Score > out[i].Score {
				out[i] = s
			}
			continue
		}
		best[key] = len(out)
		out = append(out, s)
	}
	return out
}

func sourceRank(s Source) int {
	switch s {
	case SourcePersonal:
		return 0
	case SourceContextual:
		return 1
	}
	return 2
}
