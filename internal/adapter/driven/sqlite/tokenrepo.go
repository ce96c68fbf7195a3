package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo is the SQLite implementation of the TokenStore port. It stores
// the already-encrypted secret as handed to it; sealing and opening happen
// on the other side of the port.
type TokenRepo struct {
	db *DB
}

// NewTokenRepo creates a TokenRepo on the given database.
func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Load returns the stored token for the identity. A missing row yields the
// empty record, not an error. The network fields are never persisted and
// load back as zero values.
func (r *TokenRepo) Load(ctx context.Context, identityRef string) (model.Token, error) {
	const query = `SELECT secret, expires_at FROM tokens WHERE identity_ref = ?`

	var (
		secret    string
		expiresAt sql.NullInt64
	)
	err := r.db.Reader.QueryRowContext(ctx, query, identityRef).Scan(&secret, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Token{}, nil
	}
	if err != nil {
		return model.Token{}, fmt.Errorf("load token for %q: %w", identityRef, err)
	}

	token := model.Token{
		IdentityRef:     identityRef,
		EncryptedSecret: secret,
	}
	if expiresAt.Valid {
		t := time.Unix(expiresAt.Int64, 0).UTC()
		token.ExpiresAt = &t
	}

	return token, nil
}

// Save overwrites the identity's stored token. Only the encrypted secret and
// expiry are persisted.
func (r *TokenRepo) Save(ctx context.Context, identityRef string, token model.Token) error {
	const query = `
		INSERT INTO tokens (identity_ref, secret, expires_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (identity_ref) DO UPDATE SET
			secret     = excluded.secret,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP`

	var expiresAt sql.NullInt64
	if token.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: token.ExpiresAt.Unix(), Valid: true}
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, identityRef, token.EncryptedSecret, expiresAt); err != nil {
		return fmt.Errorf("save token for %q: %w", identityRef, err)
	}
	return nil
}
