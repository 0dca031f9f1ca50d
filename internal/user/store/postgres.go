package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"giftex/internal/user/models"
	id "giftex/pkg/domain"
	"giftex/pkg/platform/sentinel"
	txcontext "giftex/pkg/platform/tx"
)

// Postgres persists users in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, u *models.User) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(u.ID), u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE id = $1`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *Postgres) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return scanUser(row)
}

func (s *Postgres) List(ctx context.Context) ([]*models.User, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, u *models.User) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, password_hash = $4, is_admin = $5, updated_at = $6
		WHERE id = $1`,
		uuid.UUID(u.ID), u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Names(ctx context.Context, ids []id.UserID) (map[id.UserID]string, error) {
	if len(ids) == 0 {
		return map[id.UserID]string{}, nil
	}
	raw := make([]uuid.UUID, len(ids))
	for i, userID := range ids {
		raw[i] = uuid.UUID(userID)
	}

	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, name FROM users WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("resolve names: %w", err)
	}
	defer rows.Close()

	out := make(map[id.UserID]string, len(ids))
	for rows.Next() {
		var (
			rawID uuid.UUID
			name  string
		)
		if err := rows.Scan(&rawID, &name); err != nil {
			return nil, fmt.Errorf("scan name row: %w", err)
		}
		out[id.UserID(rawID)] = name
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		rawID uuid.UUID
		u     models.User
	)
	err := row.Scan(&rawID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(rawID)
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
