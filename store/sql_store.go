package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/palette/entity"
	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
)

// DefaultSearchLimit applies when a Query carries no limit
const DefaultSearchLimit = 10

const entityColumns = `id, tenant_id, entity_type, client_id, code, name, title, email,
		description, status, assigned_to, created_by, created_at, updated_at`

// Query constants
const (
	EntityInsertQuery = `
		INSERT INTO entities (tenant_id, entity_type, client_id, code, name, title, email,
			description, status, assigned_to, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	EntityByIDQuery = `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE entity_type = ? AND tenant_id = ? AND id = ?`
)

// SQLStore reads and writes the entities table.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore wraps a migrated database. A nil logger uses the global one.
func NewSQLStore(db *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) log(ctx context.Context) *zap.SugaredLogger {
	return logger.FromContext(ctx, s.logger)
}

// FindByID returns the record with id inside the tenant, or nil.
func (s *SQLStore) FindByID(ctx context.Context, t entity.Type, tenantID, id int64) (*entity.Entity, error) {
	row := s.db.QueryRowContext(ctx, EntityByIDQuery, string(t), tenantID, id)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find %s by id %d", t, id)
	}
	return e, nil
}

// FindByCode tries every candidate code in one query and returns the
// lowest-id match, or nil.
func (s *SQLStore) FindByCode(ctx context.Context, t entity.Type, tenantID int64, codes []string) (*entity.Entity, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	qb := &queryBuilder{}
	qb.buildScope(t, tenantID, 0)
	qb.buildCodeFilter(codes)

	query := fmt.Sprintf("SELECT %s FROM entities WHERE %s ORDER BY id ASC LIMIT 1", entityColumns, qb.build())
	e, err := scanEntity(s.db.QueryRowContext(ctx, query, qb.args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find %s by code", t)
	}
	return e, nil
}

// Search runs a case-insensitive text query. Results come in insertion
// order unless q.Recent asks for most recently updated first.
func (s *SQLStore) Search(ctx context.Context, q Query) ([]entity.Entity, error) {
	if !q.Type.Valid() {
		return nil, errors.Wrapf(errors.ErrUnsupportedEntityType, "search %q", q.Type)
	}
	fields := q.Fields
	if len(fields) == 0 {
		fields = q.Type.Fields()
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	qb := &queryBuilder{}
	qb.buildScope(q.Type, q.TenantID, q.ClientID)
	if err := qb.buildTermFilter(fields, q.Term, q.Match); err != nil {
		return nil, err
	}

	order := "id ASC"
	if q.Recent {
		order = "updated_at DESC, id ASC"
	}
	query := fmt.Sprintf("SELECT %s FROM entities WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		entityColumns, qb.build(), order)
	args := append(qb.args, limit, q.Offset)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "search %s for %q", q.Type, q.Term)
	}
	defer rows.Close()

	var out []entity.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s row", q.Type)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s rows", q.Type)
	}

	s.log(ctx).Debugw("entity search",
		logger.FieldEntityType, q.Type,
		logger.FieldTenantID, q.TenantID,
		"term", q.Term,
		"match", q.Match.String(),
		logger.FieldCount, len(out),
		"time_us", time.Since(start).Microseconds(),
	)
	return out, nil
}

// Insert stores e and returns its new id. Zero timestamps are set to now.
func (s *SQLStore) Insert(ctx context.Context, e *entity.Entity) (int64, error) {
	if e == nil {
		return 0, errors.NewInvalidRequestError("entity is nil")
	}
	if !e.Type.Valid() {
		return 0, errors.Wrapf(errors.ErrUnsupportedEntityType, "insert %q", e.Type)
	}
	if e.TenantID == 0 {
		return 0, errors.Wrap(errors.ErrNoIdentity, "insert entity without tenant")
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	res, err := s.db.ExecContext(ctx, EntityInsertQuery,
		e.TenantID, string(e.Type), e.ClientID, e.Code, e.Name, e.Title, e.Email,
		e.Description, e.Status, e.AssignedTo, e.CreatedBy,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return 0, errors.Wrapf(err, "insert %s", e.Type)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrapf(err, "read id of inserted %s", e.Type)
	}
	e.ID = id
	return id, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(row rowScanner) (*entity.Entity, error) {
	var (
		e                entity.Entity
		typ              string
		created, updated string
	)
	err := row.Scan(&e.ID, &e.TenantID, &typ, &e.ClientID, &e.Code, &e.Name, &e.Title, &e.Email,
		&e.Description, &e.Status, &e.AssignedTo, &e.CreatedBy, &created, &updated)
	if err != nil {
		return nil, err
	}
	e.Type = entity.Type(typ)
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, errors.Wrapf(err, "parse created_at of %s %d", typ, e.ID)
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, errors.Wrapf(err, "parse updated_at of %s %d", typ, e.ID)
	}
	return &e, nil
}

// timeLayout keeps a fixed fraction width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

var _ Store = (*SQLStore)(nil)
