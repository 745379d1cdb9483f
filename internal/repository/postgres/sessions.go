package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

type sessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) GetByTokenLookup(ctx context.Context, lookup string) (*domain.Session, error) {
	query := `
		SELECT id, customer_id, token_hash, token_lookup, expires_at, created_at
		FROM sessions
		WHERE token_lookup = $1
	`

	var session domain.Session
	err := r.db.QueryRowContext(ctx, query, lookup).Scan(
		&session.ID,
		&session.CustomerID,
		&session.TokenHash,
		&session.TokenLookup,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "session", ID: lookup}
	}
	if err != nil {
		r.logger.Error("Failed to get session", zap.Error(err))
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, customer_id, token_hash, token_lookup, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.CustomerID,
		session.TokenHash,
		session.TokenLookup,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create session", zap.Error(err))
		return err
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete session", zap.Error(err))
		return err
	}

	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM sessions WHERE expires_at < $1`

	_, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		r.logger.Error("Failed to delete expired sessions", zap.Error(err))
		return err
	}

	return nil
}
