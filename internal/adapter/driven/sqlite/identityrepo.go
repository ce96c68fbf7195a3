package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.IdentityStore = (*IdentityRepo)(nil)

// identityColumns maps the attribute names accepted by FindByAttributes to
// their backing columns. Filtering is restricted to this set.
var identityColumns = map[string]string{
	"ref":          "ref",
	"username":     "username",
	"email":        "email",
	"display_name": "display_name",
}

// IdentityRepo is the SQLite implementation of the IdentityStore port.
type IdentityRepo struct {
	db *DB
}

// NewIdentityRepo creates an IdentityRepo on the given database.
func NewIdentityRepo(db *DB) *IdentityRepo {
	return &IdentityRepo{db: db}
}

// Create registers the identity, minting a uuid ref when none is given.
func (r *IdentityRepo) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	if identity.Ref == "" {
		identity.Ref = uuid.NewString()
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO identities (ref, username, email, display_name, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		identity.Ref,
		identity.Username,
		identity.Email,
		identity.DisplayName,
		identity.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("create identity %q: %w", identity.Ref, err)
	}

	return identity, nil
}

// LoadByRef returns the identity for ref, or an error wrapping
// driven.ErrIdentityNotFound.
func (r *IdentityRepo) LoadByRef(ctx context.Context, ref string) (model.Identity, error) {
	const query = `
		SELECT ref, username, email, display_name, created_at
		FROM identities WHERE ref = ?`

	identity, err := scanIdentity(r.db.Reader.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Identity{}, fmt.Errorf("%w: %q", driven.ErrIdentityNotFound, ref)
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("load identity %q: %w", ref, err)
	}

	return identity, nil
}

// FindByAttributes returns identities matching all given filters. Matches
// come back in insertion order, but that is an implementation detail;
// callers must not rely on the order of multiple matches.
func (r *IdentityRepo) FindByAttributes(ctx context.Context, attrs map[string]string) ([]model.Identity, error) {
	if len(attrs) == 0 {
		return nil, errors.New("find identities: at least one attribute required")
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if _, ok := identityColumns[name]; !ok {
			return nil, fmt.Errorf("find identities: unknown attribute %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		conditions []string
		args       []any
	)
	for _, name := range names {
		conditions = append(conditions, identityColumns[name]+" = ?")
		args = append(args, attrs[name])
	}

	query := `
		SELECT ref, username, email, display_name, created_at
		FROM identities WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY rowid`

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find identities: %w", err)
	}
	defer rows.Close()

	var identities []model.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}

	return identities, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (model.Identity, error) {
	var (
		identity  model.Identity
		createdAt string
	)
	if err := row.Scan(&identity.Ref, &identity.Username, &identity.Email, &identity.DisplayName, &createdAt); err != nil {
		return model.Identity{}, err
	}

	parsed, err := parseTimestamp(createdAt)
	if err != nil {
		return model.Identity{}, fmt.Errorf("parse created_at: %w", err)
	}
	identity.CreatedAt = parsed

	return identity, nil
}

// parseTimestamp accepts both RFC3339 (written by this repo) and the
// "YYYY-MM-DD HH:MM:SS" form SQLite produces for CURRENT_TIMESTAMP defaults.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
