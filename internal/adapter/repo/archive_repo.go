// Package repo persists produced analysis records to PostgreSQL. Archiving
// is export only: the pipeline never reads archived rows back.
package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bganalyzer/internal/analysis"
)

// ErrDuplicate is returned when an image with the same file hash has already
// been archived.
var ErrDuplicate = errors.New("analysis already archived for this image")

// DBTX is the subset of pgx pool behavior the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ArchiveRepositoryPG implements the record archive using PostgreSQL.
type ArchiveRepositoryPG struct {
	db DBTX
}

func NewArchiveRepository(db DBTX) *ArchiveRepositoryPG {
	return &ArchiveRepositoryPG{db: db}
}

// FileHash returns the hex SHA-256 of the raw image bytes, used for
// duplicate detection across uploads of the same file.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// EnsureSchema creates the archive table when it does not exist yet.
func (r *ArchiveRepositoryPG) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS analyses (
    id         UUID PRIMARY KEY,
    file_hash  TEXT NOT NULL UNIQUE,
    record     JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
	if err != nil {
		return fmt.Errorf("ensure analyses schema: %w", err)
	}
	return nil
}

// Exists reports whether a record for the given file hash is already
// archived.
func (r *ArchiveRepositoryPG) Exists(ctx context.Context, fileHash string) (bool, error) {
	var id string
	err := r.db.QueryRow(ctx, `
SELECT id FROM analyses WHERE file_hash = $1 LIMIT 1;
`, fileHash).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Save archives one record under the file hash of its source image and
// returns the new row ID. A hash collision with an existing row yields
// ErrDuplicate.
func (r *ArchiveRepositoryPG) Save(ctx context.Context, fileHash string, rec *analysis.Record) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	id := uuid.NewString()
	_, err = r.db.Exec(ctx, `
INSERT INTO analyses (id, file_hash, record)
VALUES ($1, $2, $3);
`, id, fileHash, payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}
