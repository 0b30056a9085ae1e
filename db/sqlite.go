package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"smartfarm/ml"
)

// Registry stores exported model artifacts in SQLite so a deployment can
// ship a single database file instead of loose artifact files.
type Registry struct {
	database *sql.DB
	now      func() time.Time
}

// ArtifactInfo describes a stored artifact without its payload.
type ArtifactInfo struct {
	Name       string    `json:"name"`
	Format     string    `json:"format"`
	NFeatures  int       `json:"n_features"`
	SHA256     string    `json:"sha256"`
	Size       int       `json:"size"`
	ImportedAt time.Time `json:"imported_at"`
}

// Open opens (creating if needed) the registry at path.
func Open(path string) (*Registry, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS artifacts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        format TEXT NOT NULL,
        n_features INTEGER NOT NULL,
        payload BLOB NOT NULL,
        sha256 TEXT NOT NULL,
        imported_at DATETIME NOT NULL
    );
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Registry{database: database, now: time.Now}, nil
}

func (r *Registry) Close() error {
	return r.database.Close()
}

// Import validates payload as an artifact and stores it under name,
// replacing any previous artifact of that name.
func (r *Registry) Import(ctx context.Context, name string, payload []byte) (*ArtifactInfo, error) {
	if name == "" {
		return nil, errors.New("artifact name required")
	}
	artifact, err := ml.DecodeArtifact(payload)
	if err != nil {
		return nil, err
	}
	if _, err := ml.LoadModel(artifact.Format, payload); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(payload)
	info := &ArtifactInfo{
		Name:       name,
		Format:     artifact.Format,
		NFeatures:  artifact.NFeatures,
		SHA256:     hex.EncodeToString(sum[:]),
		Size:       len(payload),
		ImportedAt: r.now().UTC(),
	}

	_, err = r.database.ExecContext(ctx, `
        INSERT OR REPLACE INTO artifacts (name, format, n_features, payload, sha256, imported_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		info.Name, info.Format, info.NFeatures, payload, info.SHA256, info.ImportedAt)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// ReadArtifact implements ml.Source.
func (r *Registry) ReadArtifact(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := r.database.QueryRowContext(ctx, `SELECT payload FROM artifacts WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ml.ErrArtifactNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *Registry) List(ctx context.Context) ([]ArtifactInfo, error) {
	rows, err := r.database.QueryContext(ctx, `
        SELECT name, format, n_features, sha256, length(payload), imported_at
        FROM artifacts
        ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := make([]ArtifactInfo, 0)
	for rows.Next() {
		var info ArtifactInfo
		if err := rows.Scan(&info.Name, &info.Format, &info.NFeatures, &info.SHA256, &info.Size, &info.ImportedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
