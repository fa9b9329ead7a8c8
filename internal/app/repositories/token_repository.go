package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// SQLTokenRepository keeps the ids of sessions ended by logout
type SQLTokenRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new SQLTokenRepository
func NewTokenRepository(db DBTX, sb squirrel.StatementBuilderType) *SQLTokenRepository {
	return &SQLTokenRepository{db: db, sb: sb}
}

// Revoke records a session id as revoked until expiresAt (unix seconds).
// Revoking an already revoked id is a no-op.
func (r *SQLTokenRepository) Revoke(ctx context.Context, sessionID string, expiresAt int64) error {
	query, args, err := r.sb.Insert("revoked_tokens").
		Columns("jti", "expires_at").
		Values(sessionID, expiresAt).
		Suffix("ON CONFLICT (jti) DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke token SQL")
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error().Err(err).Str("jti", sessionID).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the session id was revoked
func (r *SQLTokenRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	return countExists(ctx, r.db, r.sb.Select("COUNT(*)").
		From("revoked_tokens").
		Where(squirrel.Eq{"jti": sessionID}))
}

// PurgeExpired drops revocations whose token would have expired anyway
func (r *SQLTokenRepository) PurgeExpired(ctx context.Context, now int64) (int64, error) {
	query, args, err := r.sb.Delete("revoked_tokens").
		Where(squirrel.Lt{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge tokens query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error purging revoked tokens: %w", err)
	}
	return res.RowsAffected()
}
