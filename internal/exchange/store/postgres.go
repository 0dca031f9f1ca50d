package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"giftex/internal/exchange/assign"
	"giftex/internal/exchange/models"
	id "giftex/pkg/domain"
	"giftex/pkg/platform/sentinel"
	txcontext "giftex/pkg/platform/tx"
)

// Postgres persists exchanges and participants in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed exchange store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
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

// Transact begins a transaction, stores it in the context, and
// commits/rolls back around fn.
func (s *Postgres) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Postgres) CreateExchange(ctx context.Context, ex *models.Exchange) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO exchanges (id, name, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(ex.ID), ex.Name, ex.Date, string(ex.Status), ex.CreatedAt, ex.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create exchange: %w", err)
	}
	return nil
}

func (s *Postgres) GetExchange(ctx context.Context, exID id.ExchangeID) (*models.Exchange, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, name, date, status, created_at, updated_at
		FROM exchanges WHERE id = $1`, uuid.UUID(exID))
	return scanExchange(row)
}

func (s *Postgres) UpdateExchange(ctx context.Context, ex *models.Exchange) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE exchanges SET name = $2, date = $3, status = $4, updated_at = $5
		WHERE id = $1`,
		uuid.UUID(ex.ID), ex.Name, ex.Date, string(ex.Status), ex.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update exchange: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) DeleteExchange(ctx context.Context, exID id.ExchangeID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM exchanges WHERE id = $1`, uuid.UUID(exID))
	if err != nil {
		return fmt.Errorf("delete exchange: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListExchanges(ctx context.Context) ([]*models.Exchange, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, name, date, status, created_at, updated_at
		FROM exchanges ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var out []*models.Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *Postgres) AddParticipant(ctx context.Context, p *models.Participant) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO participants (user_id, exchange_id, gifter_id, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(p.UserID), uuid.UUID(p.ExchangeID), nullUUID(p.GifterID), nullString(p.Message),
		p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func (s *Postgres) GetParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) (*models.Participant, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT user_id, exchange_id, gifter_id, message, created_at, updated_at
		FROM participants WHERE exchange_id = $1 AND user_id = $2`,
		uuid.UUID(exID), uuid.UUID(userID))
	return scanParticipant(row)
}

func (s *Postgres) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE participants SET gifter_id = $3, message = $4, updated_at = $5
		WHERE exchange_id = $1 AND user_id = $2`,
		uuid.UUID(p.ExchangeID), uuid.UUID(p.UserID), nullUUID(p.GifterID), nullString(p.Message), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) RemoveParticipant(ctx context.Context, exID id.ExchangeID, userID id.UserID) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		DELETE FROM participants WHERE exchange_id = $1 AND user_id = $2`,
		uuid.UUID(exID), uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListParticipants(ctx context.Context, exID id.ExchangeID) ([]*models.Participant, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT user_id, exchange_id, gifter_id, message, created_at, updated_at
		FROM participants WHERE exchange_id = $1 ORDER BY user_id`,
		uuid.UUID(exID))
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) CountParticipants(ctx context.Context, exID id.ExchangeID) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM participants WHERE exchange_id = $1`,
		uuid.UUID(exID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

func (s *Postgres) SetGifter(ctx context.Context, exID id.ExchangeID, recipient id.UserID, gifter id.UserID) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE participants SET gifter_id = $3, updated_at = NOW()
		WHERE exchange_id = $1 AND user_id = $2`,
		uuid.UUID(exID), uuid.UUID(recipient), uuid.UUID(gifter))
	if err != nil {
		return fmt.Errorf("set gifter: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListByGifter(ctx context.Context, gifter id.UserID) ([]*models.Participant, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT user_id, exchange_id, gifter_id, message, created_at, updated_at
		FROM participants WHERE gifter_id = $1 ORDER BY exchange_id, user_id`,
		uuid.UUID(gifter))
	if err != nil {
		return nil, fmt.Errorf("list by gifter: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) HistorySnapshot(ctx context.Context, name string) ([]assign.HistoryExchange, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT e.id, e.name, e.status, e.created_at, p.gifter_id, p.user_id
		FROM exchanges e
		LEFT JOIN participants p ON p.exchange_id = e.id AND p.gifter_id IS NOT NULL
		WHERE e.name = $1
		ORDER BY e.created_at DESC, e.id`, name)
	if err != nil {
		return nil, fmt.Errorf("history snapshot: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows)
}

func (s *Postgres) HistoryByIDs(ctx context.Context, exIDs []id.ExchangeID) ([]assign.HistoryExchange, error) {
	if len(exIDs) == 0 {
		return nil, nil
	}
	raw := make([]uuid.UUID, len(exIDs))
	for i, exID := range exIDs {
		raw[i] = uuid.UUID(exID)
	}

	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT e.id, e.name, e.status, e.created_at, p.gifter_id, p.user_id
		FROM exchanges e
		LEFT JOIN participants p ON p.exchange_id = e.id AND p.gifter_id IS NOT NULL
		WHERE e.id = ANY($1)
		ORDER BY e.created_at DESC, e.id`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("history by ids: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows)
}

func collectHistory(rows *sql.Rows) ([]assign.HistoryExchange, error) {
	byID := make(map[id.ExchangeID]*assign.HistoryExchange)
	var order []id.ExchangeID

	for rows.Next() {
		var (
			rawID     uuid.UUID
			name      string
			status    string
			createdAt sql.NullTime
			gifterID  uuid.NullUUID
			userID    uuid.NullUUID
		)
		if err := rows.Scan(&rawID, &name, &status, &createdAt, &gifterID, &userID); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		exID := id.ExchangeID(rawID)
		entry, ok := byID[exID]
		if !ok {
			entry = &assign.HistoryExchange{
				ID:        exID,
				Name:      name,
				Status:    assign.Status(status),
				CreatedAt: createdAt.Time,
			}
			byID[exID] = entry
			order = append(order, exID)
		}
		if gifterID.Valid && userID.Valid {
			entry.Pairs = append(entry.Pairs, assign.Pair{
				Gifter:    id.UserID(gifterID.UUID),
				Recipient: id.UserID(userID.UUID),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]assign.HistoryExchange, 0, len(order))
	for _, exID := range order {
		out = append(out, *byID[exID])
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExchange(row rowScanner) (*models.Exchange, error) {
	var (
		rawID  uuid.UUID
		ex     models.Exchange
		status string
	)
	err := row.Scan(&rawID, &ex.Name, &ex.Date, &status, &ex.CreatedAt, &ex.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan exchange: %w", err)
	}
	ex.ID = id.ExchangeID(rawID)
	ex.Status = assign.Status(status)
	return &ex, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var (
		rawUser     uuid.UUID
		rawExchange uuid.UUID
		rawGifter   uuid.NullUUID
		message     sql.NullString
		p           models.Participant
	)
	err := row.Scan(&rawUser, &rawExchange, &rawGifter, &message, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	p.UserID = id.UserID(rawUser)
	p.ExchangeID = id.ExchangeID(rawExchange)
	if rawGifter.Valid {
		g := id.UserID(rawGifter.UUID)
		p.GifterID = &g
	}
	p.Message = message.String
	return &p, nil
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

func nullUUID(v *id.UserID) uuid.NullUUID {
	if v == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*v), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
