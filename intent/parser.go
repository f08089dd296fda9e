package intent

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/logger"
)

// Parser builds Commands from raw palette input. It holds no mutable state
// and is safe for concurrent use.
type Parser struct {
	logger *zap.SugaredLogger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for parse traces.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses input with a parser logging to the global logger.
func Parse(input string, rctx entity.Context) *Command {
	return NewParser().Parse(input, rctx)
}

// Parse never fails: unrecognized input becomes a FIND command whose search
// query is the raw text.
func (p *Parser) Parse(input string, rctx entity.Context) *Command {
	start := time.Now()
	normalized := Normalize(input)

	spec, ok := matchShortcut(normalized)
	if !ok {
		spec = p.parseFull(input, normalized, rctx)
	}
	spec.Original = input
	spec.Normalized = normalized
	spec.Context = rctx.Map()
	cmd := Build(spec)

	logger.Or(p.logger).Debugw("parsed command",
		logger.FieldInput, input,
		logger.FieldIntent, cmd.Intent(),
		logger.FieldEntities, cmd.Entities(),
		logger.FieldModifiers, cmd.Modifiers(),
		logger.FieldConfidence, cmd.Confidence(),
		logger.FieldShortcut, cmd.IsShortcut(),
		"time_us", time.Since(start).Microseconds(),
	)
	return cmd
}

func (p *Parser) parseFull(original, normalized string, rctx entity.Context) CommandSpec {
	cls := classify(normalized)
	ents := ExtractEntities(normalized)
	mods := ExtractModifiers(normalized, rctx)

	spec := CommandSpec{
		Intent:     cls.intent,
		Entities:   ents,
		Modifiers:  mods,
		Reference:  ExtractReference(original, ents),
		Confidence: Score(cls.intent, len(ents), len(mods)),
	}

	switch {
	case !cls.signal:
		spec.SearchQuery = strings.TrimSpace(original)
	case cls.intent == Find:
		spec.SearchQuery = searchTerms(normalized)
	}
	return spec
}
