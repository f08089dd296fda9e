package events

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/intent"
	"github.com/teranos/palette/logger"
)

const insertEventQuery = `
	INSERT INTO command_events (id, kind, tenant_id, user_id, input, intent, entities,
		confidence, shortcut, success, reason, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// timeLayout keeps a fixed fraction width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Tracker persists events to the command_events table. Writes beyond the
// configured rate are dropped.
type Tracker struct {
	db      *sql.DB
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithRateLimit caps writes at perSecond with the given burst. A
// non-positive rate disables throttling.
func WithRateLimit(perSecond float64, burst int) TrackerOption {
	return func(t *Tracker) {
		if perSecond <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTrackerLogger sets the tracker logger.
func WithTrackerLogger(l *zap.SugaredLogger) TrackerOption {
	return func(t *Tracker) {
		t.logger = l
	}
}

// NewTracker writes to a migrated database.
func NewTracker(db *sql.DB, opts ...TrackerOption) *Tracker {
	t := &Tracker{db: db}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) log(ctx context.Context) *zap.SugaredLogger {
	return logger.FromContext(ctx, t.logger).Named("events")
}

// Emit stores ev. Failures and throttled events are logged and dropped.
func (t *Tracker) Emit(ctx context.Context, ev Event) {
	if t.limiter != nil && !t.limiter.Allow() {
		t.log(ctx).Debugw("event rate limited", "event_id", ev.ID, "kind", ev.Kind)
		return
	}
	if err := t.Record(ctx, ev); err != nil {
		t.log(ctx).Warnw("failed to record event", "event_id", ev.ID, logger.FieldError, err)
	}
}

// Record stores ev without throttling.
func (t *Tracker) Record(ctx context.Context, ev Event) error {
	var success sql.NullBool
	if ev.Success != nil {
		success = sql.NullBool{Bool: *ev.Success, Valid: true}
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := t.db.ExecContext(ctx, insertEventQuery,
		ev.ID, string(ev.Kind), ev.TenantID, ev.UserID, ev.Input, string(ev.Intent),
		joinTypes(ev.Entities), ev.Confidence, ev.Shortcut, success, ev.Reason,
		ev.Duration.Milliseconds(), at.UTC().Format(timeLayout),
	)
	return errors.Wrapf(err, "insert %s event", ev.Kind)
}

// Stats aggregates events since a point in time.
type Stats struct {
	Since         time.Time             `json:"since"`
	Parsed        int                   `json:"parsed"`
	Succeeded     int                   `json:"succeeded"`
	Failed        int                   `json:"failed"`
	SuccessRate   float64               `json:"success_rate"` // over executed commands
	AvgConfidence float64               `json:"avg_confidence"`
	Shortcuts     int                   `json:"shortcuts"`
	Intents       map[intent.Intent]int `json:"intents"`
}

// Stats summarizes events created at or after since.
func (t *Tracker) Stats(ctx context.Context, since time.Time) (*Stats, error) {
	st := &Stats{Since: since}
	if err := t.countKinds(ctx, st); err != nil {
		return nil, err
	}
	if executed := st.Succeeded + st.Failed; executed > 0 {
		st.SuccessRate = float64(st.Succeeded) / float64(executed)
	}

	intents, err := t.IntentBreakdown(ctx, since)
	if err != nil {
		return nil, err
	}
	st.Intents = intents
	return st, nil
}

func (t *Tracker) countKinds(ctx context.Context, st *Stats) error {
	rows, err := t.db.QueryContext(ctx, `
		SELECT kind, COUNT(*), COALESCE(SUM(shortcut), 0), COALESCE(AVG(confidence), 0)
		FROM command_events
		WHERE created_at >= ?
		GROUP BY kind`, st.Since.UTC().Format(timeLayout))
	if err != nil {
		return errors.Wrap(err, "query event counts")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind      string
			count     int
			shortcuts int
			avgConf   float64
		)
		if err := rows.Scan(&kind, &count, &shortcuts, &avgConf); err != nil {
			return errors.Wrap(err, "scan event counts")
		}
		switch Kind(kind) {
		case KindParsed:
			st.Parsed = count
			st.Shortcuts = shortcuts
			st.AvgConfidence = avgConf
		case KindSucceeded:
			st.Succeeded = count
		case KindFailed:
			st.Failed = count
		}
	}
	return errors.Wrap(rows.Err(), "iterate event counts")
}

// IntentBreakdown counts parse events per intent since a point in time.
func (t *Tracker) IntentBreakdown(ctx context.Context, since time.Time) (map[intent.Intent]int, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT intent, COUNT(*)
		FROM command_events
		WHERE kind = ? AND created_at >= ?
		GROUP BY intent
		ORDER BY intent`, string(KindParsed), since.UTC().Format(timeLayout))
	if err != nil {
		return nil, errors.Wrap(err, "query intent breakdown")
	}
	defer rows.Close()

	out := make(map[intent.Intent]int)
	for rows.Next() {
		var (
			in    string
			count int
		)
		if err := rows.Scan(&in, &count); err != nil {
			return nil, errors.Wrap(err, "scan intent breakdown")
		}
		out[intent.Intent(in)] = count
	}
	return out, errors.Wrap(rows.Err(), "iterate intent breakdown")
}

func joinTypes(ts []entity.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
