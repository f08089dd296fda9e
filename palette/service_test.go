package palette

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/palette/am"
	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/events"
	"github.com/teranos/palette/intent"
	"github.com/teranos/palette/learn"
	palettetest "github.com/teranos/palette/internal/testing"
	"github.com/teranos/palette/store"
)

var (
	now   = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	alice = entity.Context{TenantID: 1, UserID: 7}
)

func defaultConfig(t *testing.T) *am.Config {
	t.Helper()
	v := viper.New()
	am.SetDefaults(v)
	cfg, err := am.LoadWithViper(v)
	require.NoError(t, err)
	return cfg
}

type recordingSink struct{ events []events.Event }

func (r *recordingSink) Emit(_ context.Context, ev events.Event) { r.events = append(r.events, ev) }

type failingStore struct{}

func (failingStore) FindByID(context.Context, entity.Type, int64, int64) (*entity.Entity, error) {
	return nil, errors.New("database is locked")
}
func (failingStore) FindByCode(context.Context, entity.Type, int64, []string) (*entity.Entity, error) {
	return nil, errors.New("database is locked")
}
func (failingStore) Search(context.Context, store.Query) ([]entity.Entity, error) {
	return nil, errors.New("database is locked")
}

func seededService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	database := palettetest.CreateTestDB(t)
	entities := store.NewSQLStore(database, zaptest.NewLogger(t).Sugar())
	_, err := store.Seed(context.Background(), entities, alice.TenantID, now)
	require.NoError(t, err)

	opts = append([]Option{WithLogger(zaptest.NewLogger(t).Sugar()), WithClock(func() time.Time { return now })}, opts...)
	return New(entities, cache.NewMemoryStore(), opts...)
}

func TestHandleResolvesShortcutReference(t *testing.T) {
	svc := seededService(t)

	res := svc.Handle(context.Background(), "$INV1002", alice)

	assert.Equal(t, intent.Go, res.Command.Intent())
	require.NotNil(t, res.Entity)
	assert.Equal(t, "Hardware refresh", res.Entity.Title)
	assert.Empty(t, res.Message)
}

func TestHandleUntypedNameSearches(t *testing.T) {
	svc := seededService(t)

	res := svc.Handle(context.Background(), "go to Acme Corporation", alice)

	assert.Nil(t, res.Entity)
	require.NotNil(t, res.Search)
	require.NotEmpty(t, res.Search.Items)
	assert.Equal(t, "Acme Corporation", res.Search.Items[0].Entity.Name)
}

func TestHandleFindRunsGlobalSearch(t *testing.T) {
	svc := seededService(t)

	res := svc.Handle(context.Background(), "find printer", alice)
	require.NotNil(t, res.Search)
	require.NotEmpty(t, res.Search.Items)
	assert.Equal(t, entity.Ticket, res.Search.Items[0].Entity.Type)

	none := svc.Handle(context.Background(), "find zzzqqq", alice)
	require.NotNil(t, none.Search)
	assert.True(t, none.Search.Empty())
	assert.Equal(t, `No results for "zzzqqq"`, none.Message)
}

func TestHandleMissingReference(t *testing.T) {
	svc := seededService(t)

	res := svc.Handle(context.Background(), "go to ticket #999999", alice)

	assert.Nil(t, res.Entity)
	assert.Equal(t, `No ticket matching "999999"`, res.Message)
}

func TestHandleSwallowsStoreFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := New(failingStore{}, cache.NewMemoryStore(), WithLogger(zap.New(core).Sugar()))

	var res *Result
	assert.NotPanics(t, func() {
		res = svc.Handle(context.Background(), "#42", alice)
	})
	require.NotNil(t, res.Command)
	assert.Equal(t, intent.Go, res.Command.Intent())
	assert.Nil(t, res.Entity)
	assert.Equal(t, 1, logs.FilterMessage("entity resolution failed").Len())

	_, err := svc.Resolve(context.Background(), "ticket", "42", alice)
	assert.Error(t, err, "direct resolution reports store failures")
}

func TestLearningThroughService(t *testing.T) {
	sink := &recordingSink{}
	svc := seededService(t, WithSink(sink))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Handle(ctx, "show my urgent tickets", alice)
		svc.RecordSuccess(ctx, "show my urgent tickets", alice)
	}
	svc.RecordFailure(ctx, "go to #404", alice, "entity not found")

	got := svc.Suggest(ctx, "show", alice)
	require.NotEmpty(t, got)
	assert.Equal(t, "show my urgent tickets", got[0].Command)
	assert.Equal(t, learn.SourcePersonal, got[0].Source)

	insights := svc.Insights(ctx, alice)
	require.NotEmpty(t, insights.FailingCommands)
	assert.Equal(t, "entity not found", insights.FailingCommands[0].Reason)
	assert.Equal(t, 3, insights.EntityAccess[entity.Ticket])

	kinds := map[events.Kind]int{}
	for _, ev := range sink.events {
		kinds[ev.Kind]++
	}
	assert.Equal(t, map[events.Kind]int{events.KindParsed: 3, events.KindSucceeded: 3, events.KindFailed: 1}, kinds)

	svc.ClearLearning(ctx, alice.UserID)
	for _, s := range svc.Suggest(ctx, "show", alice) {
		assert.NotEqual(t, learn.SourcePersonal, s.Source)
	}

	svc.ClearLearning(ctx, 0)
	assert.Empty(t, svc.Suggest(ctx, "show", alice))
}

func TestWithoutLearning(t *testing.T) {
	svc := seededService(t, WithoutLearning())
	ctx := context.Background()

	svc.RecordSuccess(ctx, "show tickets", alice)
	svc.RecordSuccess(ctx, "show tickets", alice)
	svc.RecordSuccess(ctx, "show tickets", alice)

	assert.Nil(t, svc.Suggest(ctx, "", alice))
	assert.Equal(t, learn.Insights{}, svc.Insights(ctx, alice))
}

func TestOpenWiresConfiguredBackends(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Database.Path = filepath.Join(t.TempDir(), "palette.db")
	cfg.Cache.Backend = am.CacheSQLite
	cfg.Events.Sink = am.EventsSQLite
	cfg.Events.MaxPerSecond = 0

	svc, err := Open(cfg, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	ctx := context.Background()

	n, err := svc.Seed(ctx, alice.TenantID)
	require.NoError(t, err)
	assert.Equal(t, len(store.DemoEntities(now)), n)

	res := svc.Handle(ctx, "go to quote QUO-8", alice)
	require.NotNil(t, res.Entity)
	assert.Equal(t, "Laptop fleet", res.Entity.Title)
	svc.RecordSuccess(ctx, "go to quote QUO-8", alice)

	stats, err := svc.Stats(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Parsed)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Intents[intent.Go])
}

func TestStatsNeedSQLiteSink(t *testing.T) {
	svc := seededService(t)
	_, err := svc.Stats(context.Background(), time.Time{})
	assert.Error(t, err)
}

func TestNewFromDBRejectsInvalidConfig(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Cache.Backend = "redis"

	_, err := NewFromDB(palettetest.CreateTestDB(t), cfg, nil)
	assert.Error(t, err)
}

func TestCacheStoreSelection(t *testing.T) {
	database := palettetest.CreateTestDB(t)
	cfg := defaultConfig(t)

	assert.IsType(t, &cache.MemoryStore{}, CacheStore(database, cfg, nil))
	cfg.Cache.Backend = am.CacheSQLite
	assert.IsType(t, &cache.SQLStore{}, CacheStore(database, cfg, nil))
	cfg.Cache.Backend = am.CacheNone
	assert.IsType(t, cache.NullStore{}, CacheStore(database, cfg, nil))
}
