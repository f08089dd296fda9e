package learn

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/intent"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (brokenStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenStore) Forget(context.Context, string) error {
	return errors.New("connection refused")
}

func newEngine(t *testing.T, cfg Config) (*Engine, *cache.MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: t0}
	store := cache.NewMemoryStore()
	e := New(store, cfg, WithLogger(zaptest.NewLogger(t).Sugar()), WithClock(clock.Now))
	return e, store, clock
}

var alice = entity.Context{TenantID: 1, UserID: 7, Workflow: "billing"}

func succeed(e *Engine, input string, rctx entity.Context, times int) {
	cmd := intent.Parse(input, rctx)
	for i := 0; i < times; i++ {
		e.RecordSuccess(context.Background(), input, cmd, rctx)
	}
}

func fail(e *Engine, input string, rctx entity.Context, reason string, times int) {
	cmd := intent.Parse(input, rctx)
	for i := 0; i < times; i++ {
		e.RecordFailure(context.Background(), input, cmd, rctx, reason)
	}
}

func TestRecordSuccessUpdatesAllTables(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())
	ctx := context.Background()

	succeed(e, "show my urgent tickets", alice, 2)

	patterns := e.Patterns(ctx, alice.UserID)
	require.Len(t, patterns, 1)
	assert.Equal(t, "SHOW:ticket:MY,URGENT", patterns[0].Key)
	assert.Equal(t, 2, patterns[0].SuccessCount)
	assert.Equal(t, t0, patterns[0].CreatedAt.UTC())

	entries := e.ContextEntries(ctx, alice.UserID)
	require.Len(t, entries, 1)
	assert.Equal(t, "billing@0:SHOW:ticket:MY,URGENT", entries[0].Key())
	assert.Equal(t, 2, entries[0].SuccessCount)

	stats := e.GlobalStats(ctx)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].UsageCount)
	assert.Equal(t, 2, stats[0].SuccessCount)
	assert.Equal(t, CommandHash("Show my urgent tickets  "), stats[0].Hash)

	assert.Equal(t, map[entity.Type]int{entity.Ticket: 2}, e.EntityAccessCounts(ctx, alice.TenantID))
}

func TestRecordWithoutUserIsIgnored(t *testing.T) {
	e, store, _ := newEngine(t, DefaultConfig())
	anonymous := entity.Context{TenantID: 1}

	succeed(e, "show tickets", anonymous, 3)
	fail(e, "show tickets", anonymous, "no results", 1)

	assert.Zero(t, store.Len())
	assert.Empty(t, e.Suggest(context.Background(), "", anonymous))
}

func TestRecordFailureGroupsByCommandAndReason(t *testing.T) {
	e, _, clock := newEngine(t, DefaultConfig())
	ctx := context.Background()
	other := alice
	other.Workflow = "support"

	fail(e, "go to #9999", alice, "entity not found", 1)
	clock.Advance(time.Hour)
	fail(e, "go to #9999", other, "entity not found", 1)
	fail(e, "go to #9999", alice, "permission denied", 1)

	failures := e.Failures(ctx)
	require.Len(t, failures, 2)
	top := failures[0]
	assert.Equal(t, "entity not found", top.Reason)
	assert.Equal(t, 2, top.Count)
	assert.Equal(t, map[string]int{"billing@0": 1, "support@0": 1}, top.Contexts)
	assert.Equal(t, t0, top.FirstSeen.UTC())
	assert.Equal(t, t0.Add(time.Hour), top.LastSeen.UTC())

	patterns := e.Patterns(ctx, alice.UserID)
	require.Len(t, patterns, 1)
	assert.Equal(t, 3, patterns[0].FailureCount)
	assert.Zero(t, patterns[0].SuccessCount)
}

func TestFailureRecordsExpire(t *testing.T) {
	e, _, clock := newEngine(t, DefaultConfig())

	fail(e, "find the thing", alice, "no results", 1)
	clock.Advance(8 * 24 * time.Hour)
	fail(e, "create invoice", alice, "validation failed", 1)

	failures := e.Failures(context.Background())
	require.Len(t, failures, 1)
	assert.Equal(t, "create invoice", failures[0].Command)
}

func TestContextEntriesExpire(t *testing.T) {
	e, _, clock := newEngine(t, DefaultConfig())

	succeed(e, "show overdue invoices", alice, 1)
	clock.Advance(31 * 24 * time.Hour)
	succeed(e, "create quote", alice, 1)

	entries := e.ContextEntries(context.Background(), alice.UserID)
	require.Len(t, entries, 1)
	assert.Equal(t, "CREATE:quote:", entries[0].PatternKey)
}

func TestGlobalTableKeepsMostUsed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GlobalCapacity = 2
	e, _, clock := newEngine(t, cfg)

	succeed(e, "show tickets", alice, 3)
	succeed(e, "show invoices", alice, 2)
	clock.Advance(time.Minute)
	succeed(e, "show quotes", alice, 1)

	stats := e.GlobalStats(context.Background())
	require.Len(t, stats, 2)
	assert.Equal(t, "show tickets", stats[0].Command)
	assert.Equal(t, "show invoices", stats[1].Command)
}

// distinctCommand builds the i-th of more than 100 distinct usage signatures.
func distinctCommand(i int) *intent.Command {
	intents := intent.Intents()
	types := entity.All()
	spec := intent.CommandSpec{
		Intent:   intents[i%len(intents)],
		Entities: []entity.Type{types[(i/len(intents))%len(types)]},
	}
	if i >= len(intents)*len(types) {
		spec.Modifiers = []intent.Modifier{intent.Urgent}
	}
	spec.Original = fmt.Sprintf("command %d", i)
	return intent.Build(spec)
}

func TestPatternCapacityEvictsStalest(t *testing.T) {
	e, _, clock := newEngine(t, DefaultConfig())
	ctx := context.Background()

	first := distinctCommand(0)
	e.RecordSuccess(ctx, first.Original(), first, alice)
	clock.Advance(48 * time.Hour)
	for i := 1; i <= 100; i++ {
		cmd := distinctCommand(i)
		e.RecordSuccess(ctx, cmd.Original(), cmd, alice)
	}

	patterns := e.Patterns(ctx, alice.UserID)
	require.Len(t, patterns, 100)
	for _, p := range patterns {
		assert.NotEqual(t, first.PatternKey(), p.Key, "stale pattern should be evicted")
	}
}

func TestPatternCapacityEvictsLowestSuccess(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		cmd := distinctCommand(i)
		e.RecordSuccess(ctx, cmd.Original(), cmd, alice)
		e.RecordSuccess(ctx, cmd.Original(), cmd, alice)
	}
	last := distinctCommand(100)
	e.RecordSuccess(ctx, last.Original(), last, alice)

	patterns := e.Patterns(ctx, alice.UserID)
	require.Len(t, patterns, 100)
	for _, p := range patterns {
		assert.Equal(t, 2, p.SuccessCount)
	}
}

func TestSuggestPersonalAfterThreeSuccesses(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())

	succeed(e, "show my urgent tickets", alice, 3)

	got := e.Suggest(context.Background(), "sh", alice)
	require.NotEmpty(t, got)
	assert.Equal(t, "show my urgent tickets", got[0].Command)
	assert.Equal(t, SourcePersonal, got[0].Source)
	assert.Equal(t, "SHOW:ticket:MY,URGENT", got[0].PatternKey)
	assert.Len(t, got, 1, "contextual and global duplicates collapse into one")
}

func TestSuggestSkipsPersonalBelowThreshold(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())

	succeed(e, "show my urgent tickets", alice, 2)
	for _, s := range e.Suggest(context.Background(), "", alice) {
		assert.NotEqual(t, SourcePersonal, s.Source)
	}

	// 3 successes and 3 failures is a 50% success rate
	succeed(e, "show my urgent tickets", alice, 1)
	fail(e, "show my urgent tickets", alice, "timeout", 3)
	for _, s := range e.Suggest(context.Background(), "", alice) {
		assert.NotEqual(t, SourcePersonal, s.Source)
		assert.NotEqual(t, SourceGlobal, s.Source)
	}
}

func TestSuggestContextual(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())
	other := alice
	other.Workflow = "support"

	succeed(e, "new invoice", alice, 1)

	got := e.Suggest(context.Background(), "", alice)
	require.Len(t, got, 2)
	assert.Equal(t, SourceGlobal, got[0].Source)
	assert.Equal(t, "new invoice", got[0].Command)
	assert.Equal(t, SourceContextual, got[1].Source)
	assert.Equal(t, "create invoice", got[1].Command)
	assert.InDelta(t, 0.1+0.02+contextualBonus, got[1].Score, 1e-9)

	for _, s := range e.Suggest(context.Background(), "", other) {
		assert.NotEqual(t, SourceContextual, s.Source)
	}
}

func TestSuggestGlobalForOtherUsers(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())
	bob := entity.Context{TenantID: 1, UserID: 8}

	succeed(e, "show overdue invoices", alice, 4)
	succeed(e, "find acme", alice, 2)
	fail(e, "find acme", alice, "no results", 2)

	got := e.Suggest(context.Background(), "", bob)
	require.Len(t, got, 1)
	assert.Equal(t, "show overdue invoices", got[0].Command)
	assert.Equal(t, SourceGlobal, got[0].Source)
	assert.InDelta(t, 0.7+4.0/50+globalBonus, got[0].Score, 1e-9)

	anonymous := e.Suggest(context.Background(), "", entity.Context{})
	assert.Equal(t, got, anonymous)
}

func TestSuggestPrefixBoost(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())
	bob := entity.Context{TenantID: 1, UserID: 8}

	succeed(e, "show tickets", alice, 5)
	succeed(e, "find invoices", alice, 5)

	got := e.Suggest(context.Background(), "FIN", bob)
	require.Len(t, got, 2)
	assert.Equal(t, "find invoices", got[0].Command)
	assert.InDelta(t, prefixBonus, got[0].Score-got[1].Score, 1e-9)
}

func TestSuggestLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SuggestionLimit = 3
	e, _, _ := newEngine(t, cfg)
	bob := entity.Context{TenantID: 1, UserID: 8}

	for i := 0; i < 6; i++ {
		succeed(e, fmt.Sprintf("find item %d", i), alice, 1)
	}
	assert.Len(t, e.Suggest(context.Background(), "", bob), 3)
}

func TestBrokenCacheDegrades(t *testing.T) {
	e := New(brokenStore{}, DefaultConfig(), WithLogger(zaptest.NewLogger(t).Sugar()))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		succeed(e, "show tickets", alice, 3)
		fail(e, "show tickets", alice, "boom", 1)
		e.Clear(ctx, alice.UserID)
		e.ClearAll(ctx)
	})
	assert.Empty(t, e.Suggest(ctx, "", alice))
	assert.Empty(t, e.Insights(ctx, alice.UserID, alice.TenantID).TopPatterns)
}

func TestNilCacheDisablesLearning(t *testing.T) {
	e := New(nil, DefaultConfig())
	succeed(e, "show tickets", alice, 3)
	assert.Empty(t, e.Suggest(context.Background(), "", alice))
}

func TestInsights(t *testing.T) {
	e, _, _ := newEngine(t, DefaultConfig())

	succeed(e, "show tickets", alice, 3)
	succeed(e, "create invoice for this client", alice, 1)
	fail(e, "go to #42", alice, "entity not found", 2)

	in := e.Insights(context.Background(), alice.UserID, alice.TenantID)
	require.Len(t, in.TopPatterns, 3)
	assert.Equal(t, "SHOW:ticket:", in.TopPatterns[0].Key)
	require.Len(t, in.FailingCommands, 1)
	assert.Equal(t, 2, in.FailingCommands[0].Count)
	assert.Equal(t, map[entity.Type]int{entity.Ticket: 3, entity.Invoice: 1, entity.Client: 1}, in.EntityAccess)
}

func TestClear(t *testing.T) {
	e, store, _ := newEngine(t, DefaultConfig())
	ctx := context.Background()
	bob := entity.Context{TenantID: 1, UserID: 8}
	require.NoError(t, store.Put(ctx, "resolve:ticket:1:x", []byte("{}"), 0))

	succeed(e, "show tickets", alice, 3)
	succeed(e, "show tickets", bob, 3)

	e.Clear(ctx, alice.UserID)
	assert.Empty(t, e.Patterns(ctx, alice.UserID))
	assert.Len(t, e.Patterns(ctx, bob.UserID), 1)
	assert.NotEmpty(t, e.GlobalStats(ctx))

	e.ClearAll(ctx)
	assert.Equal(t, []string{"resolve:ticket:1:x"}, store.Keys())
}
