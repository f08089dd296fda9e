package learn

import (
	"context"
	"strings"
	"time"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/intent"
	"github.com/teranos/palette/logger"
)

// RecordSuccess folds a successful command into the user's patterns, the
// context table, the global command table and the tenant's entity access
// counters. Calls without an authenticated user are ignored.
func (e *Engine) RecordSuccess(ctx context.Context, command string, parsed *intent.Command, rctx entity.Context) {
	if !rctx.HasUser() || parsed == nil {
		return
	}
	now := e.now()
	patternKey := parsed.PatternKey()

	if patterns, ok := load[Pattern](ctx, e, userPatternsKey(rctx.UserID)); ok {
		p := patternFor(patterns, parsed, now)
		p.SuccessCount++
		p.LastUsed = now
		patterns[patternKey] = p
		save(ctx, e, userPatternsKey(rctx.UserID), e.prunePatterns(patterns, now))
	}

	if entries, ok := load[ContextEntry](ctx, e, userContextKey(rctx.UserID)); ok {
		ce := ContextEntry{ContextKey: rctx.LearningKey(), PatternKey: patternKey}
		if existing, found := entries[ce.Key()]; found {
			ce = existing
		}
		ce.SuccessCount++
		ce.Command = strings.TrimSpace(command)
		ce.LastUsed = now
		entries[ce.Key()] = ce
		save(ctx, e, userContextKey(rctx.UserID), e.pruneContext(entries, now))
	}

	e.recordGlobal(ctx, command, true)

	if rctx.HasTenant() && len(parsed.Entities()) > 0 {
		if counts, ok := load[int](ctx, e, accessKey(rctx.TenantID)); ok {
			for _, t := range parsed.Entities() {
				counts[string(t)]++
			}
			save(ctx, e, accessKey(rctx.TenantID), counts)
		}
	}

	e.log(ctx).Debugw("recorded success",
		logger.FieldUserID, rctx.UserID,
		logger.FieldPattern, patternKey)
}

// RecordFailure counts a failed command against the user's pattern and
// groups it with earlier failures of the same command and reason.
func (e *Engine) RecordFailure(ctx context.Context, command string, parsed *intent.Command, rctx entity.Context, reason string) {
	if !rctx.HasUser() {
		return
	}
	now := e.now()

	if parsed != nil {
		if patterns, ok := load[Pattern](ctx, e, userPatternsKey(rctx.UserID)); ok {
			p := patternFor(patterns, parsed, now)
			p.FailureCount++
			p.LastUsed = now
			patterns[p.Key] = p
			save(ctx, e, userPatternsKey(rctx.UserID), e.prunePatterns(patterns, now))
		}
	}

	if failures, ok := load[FailureRecord](ctx, e, failuresKey); ok {
		hash := failureHash(command, reason)
		rec, found := failures[hash]
		if !found {
			rec = FailureRecord{
				Hash:      hash,
				Command:   strings.TrimSpace(command),
				Reason:    strings.TrimSpace(reason),
				Contexts:  make(map[string]int),
				FirstSeen: now,
			}
		}
		if rec.Contexts == nil {
			rec.Contexts = make(map[string]int)
		}
		rec.Count++
		rec.Contexts[rctx.LearningKey()]++
		rec.LastSeen = now
		failures[hash] = rec
		save(ctx, e, failuresKey, e.pruneFailures(failures, now))
	}

	e.recordGlobal(ctx, command, false)

	e.log(ctx).Debugw("recorded failure",
		logger.FieldUserID, rctx.UserID,
		logger.FieldReason, reason)
}

func (e *Engine) recordGlobal(ctx context.Context, command string, success bool) {
	text := strings.TrimSpace(command)
	if text == "" {
		return
	}
	stats, ok := load[CommandStat](ctx, e, globalKey)
	if !ok {
		return
	}
	hash := CommandHash(text)
	st, found := stats[hash]
	if !found {
		st = CommandStat{Hash: hash, Command: text}
	}
	st.UsageCount++
	if success {
		st.SuccessCount++
	} else {
		st.FailureCount++
	}
	st.LastUsed = e.now()
	stats[hash] = st
	save(ctx, e, globalKey, e.pruneGlobal(stats))
}

func patternFor(patterns map[string]Pattern, parsed *intent.Command, now time.Time) Pattern {
	key := parsed.PatternKey()
	if p, ok := patterns[key]; ok {
		return p
	}
	return Pattern{
		Key:       key,
		Intent:    parsed.Intent(),
		Entities:  parsed.Entities(),
		Modifiers: parsed.Modifiers(),
		CreatedAt: now,
	}
}
