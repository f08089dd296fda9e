// Package palette composes the intent parser, the entity resolver and the
// learning engine into the command palette service.
package palette

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/palette/cache"
	"github.com/teranos/palette/db"
	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/events"
	"github.com/teranos/palette/intent"
	"github.com/teranos/palette/learn"
	"github.com/teranos/palette/logger"
	"github.com/teranos/palette/resolve"
	"github.com/teranos/palette/store"
)

// Service is the palette entry point. Store failures during Handle are
// logged and never block parsing.
type Service struct {
	parser   *intent.Parser
	resolver *resolve.Resolver
	learner  *learn.Engine // nil when learning is disabled
	sink     events.Sink
	logger   *zap.SugaredLogger
	now      func() time.Time

	closers []func() error
	seeder  *store.SQLStore
	tracker *events.Tracker
}

type options struct {
	resolver resolve.Config
	learning *learn.Config
	sink     events.Sink
	logger   *zap.SugaredLogger
	now      func() time.Time
	seeder   *store.SQLStore
	tracker  *events.Tracker
	closers  []func() error
}

// Option configures a Service.
type Option func(*options)

// WithResolverConfig overrides resolver limits and TTLs.
func WithResolverConfig(cfg resolve.Config) Option {
	return func(o *options) {
		o.resolver = cfg
	}
}

// WithLearning enables the learning engine with cfg.
func WithLearning(cfg learn.Config) Option {
	return func(o *options) {
		o.learning = &cfg
	}
}

// WithoutLearning disables usage recording and suggestions.
func WithoutLearning() Option {
	return func(o *options) {
		o.learning = nil
	}
}

// WithSink sends parse and outcome events to sink.
func WithSink(sink events.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds a service over a data store and a cache. Learning is enabled
// with learn.DefaultConfig unless WithoutLearning is given.
func New(st store.Store, c cache.Store, opts ...Option) *Service {
	def := learn.DefaultConfig()
	o := options{
		resolver: resolve.DefaultConfig(),
		learning: &def,
		sink:     events.NopSink{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil {
		o.sink = events.NopSink{}
	}

	s := &Service{
		parser:   intent.NewParser(intent.WithLogger(o.logger)),
		resolver: resolve.New(st, c, o.resolver, resolve.WithLogger(o.logger), resolve.WithClock(o.now)),
		sink:     o.sink,
		logger:   o.logger,
		now:      o.now,
		closers:  o.closers,
		seeder:   o.seeder,
		tracker:  o.tracker,
	}
	if o.learning != nil {
		s.learner = learn.New(c, *o.learning, learn.WithLogger(o.logger), learn.WithClock(o.now))
	}
	return s
}

func (s *Service) log(ctx context.Context) *zap.SugaredLogger {
	return logger.FromContext(ctx, s.logger).Named("palette")
}

// Result is the outcome of handling one palette input.
type Result struct {
	Command *intent.Command        `json:"command"`
	Entity  *entity.Entity         `json:"entity,omitempty"`
	Search  *resolve.SearchResults `json:"search,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// Parse turns raw input into a command and emits a parse event.
func (s *Service) Parse(ctx context.Context, input string, rctx entity.Context) *intent.Command {
	start := time.Now()
	cmd := s.parser.Parse(input, rctx)
	s.sink.Emit(ctx, events.Parsed(cmd, rctx, time.Since(start), s.now()))
	return cmd
}

// Handle parses input, resolves its entity reference and runs a global
// search for FIND commands.
func (s *Service) Handle(ctx context.Context, input string, rctx entity.Context) *Result {
	if logger.RequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, uuid.NewString())
	}
	cmd := s.Parse(ctx, input, rctx)
	res := &Result{Command: cmd}

	if ref := cmd.Reference(); ref != nil {
		t := ref.Type
		if t == "" {
			t, _ = cmd.PrimaryEntity()
		}
		if t != "" {
			e, err := s.resolver.Resolve(ctx, string(t), ref.Value, rctx)
			if err != nil {
				s.log(ctx).Warnw("entity resolution failed",
					logger.FieldEntityType, t,
					logger.FieldIdentifier, ref.Value,
					logger.FieldError, err)
			}
			res.Entity = e
			if e == nil {
				res.Message = fmt.Sprintf("No %s matching %q", t, ref.Value)
			}
			return res
		}
		// Untyped name reference: look everywhere
		res.Search = s.resolver.Search(ctx, ref.Value, nil, rctx)
		res.Message = res.Search.Message
		return res
	}

	if q := strings.TrimSpace(cmd.SearchQuery()); q != "" && cmd.Intent() == intent.Find {
		res.Search = s.resolver.Search(ctx, q, cmd.Entities(), rctx)
		res.Message = res.Search.Message
	}
	return res
}

// Resolve resolves an identifier of the given entity type. Only data store
// failures are errors.
func (s *Service) Resolve(ctx context.Context, tag, identifier string, rctx entity.Context) (*entity.Entity, error) {
	return s.resolver.Resolve(ctx, tag, identifier, rctx)
}

// Candidates returns ranked fuzzy matches for term within one entity type.
func (s *Service) Candidates(ctx context.Context, t entity.Type, term string, rctx entity.Context) ([]resolve.Candidate, error) {
	return s.resolver.Candidates(ctx, t, term, rctx)
}

// Search runs a global search over types, or every type when none given.
func (s *Service) Search(ctx context.Context, term string, types []entity.Type, rctx entity.Context) *resolve.SearchResults {
	return s.resolver.Search(ctx, term, types, rctx)
}

// Invalidate drops cached resolutions for t after its records changed.
func (s *Service) Invalidate(ctx context.Context, t entity.Type) int {
	return s.resolver.Invalidate(ctx, t)
}

// Suggest returns ranked command suggestions for a partial input.
func (s *Service) Suggest(ctx context.Context, partial string, rctx entity.Context) []learn.Suggestion {
	if s.learner == nil {
		return nil
	}
	return s.learner.Suggest(ctx, partial, rctx)
}

// RecordSuccess records that input executed successfully.
func (s *Service) RecordSuccess(ctx context.Context, input string, rctx entity.Context) {
	cmd := s.parser.Parse(input, rctx)
	if s.learner != nil {
		s.learner.RecordSuccess(ctx, input, cmd, rctx)
	}
	s.sink.Emit(ctx, events.Outcome(input, cmd, rctx, true, "", s.now()))
}

// RecordFailure records that input failed for reason.
func (s *Service) RecordFailure(ctx context.Context, input string, rctx entity.Context, reason string) {
	cmd := s.parser.Parse(input, rctx)
	if s.learner != nil {
		s.learner.RecordFailure(ctx, input, cmd, rctx, reason)
	}
	s.sink.Emit(ctx, events.Outcome(input, cmd, rctx, false, reason, s.now()))
}

// Insights summarizes learned usage for the caller.
func (s *Service) Insights(ctx context.Context, rctx entity.Context) learn.Insights {
	if s.learner == nil {
		return learn.Insights{}
	}
	return s.learner.Insights(ctx, rctx.UserID, rctx.TenantID)
}

// ClearLearning forgets one user's learning state, or all learning state
// when userID is 0.
func (s *Service) ClearLearning(ctx context.Context, userID int64) {
	if s.learner == nil {
		return
	}
	if userID == 0 {
		s.learner.ClearAll(ctx)
		return
	}
	s.learner.Clear(ctx, userID)
}

// Close releases resources acquired by Open.
func (s *Service) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && !db.IsDatabaseClosed(err) && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
