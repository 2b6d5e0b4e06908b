package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PassRecord is one completed generate pass.
type PassRecord struct {
	ID          string    `json:"id" yaml:"id"`
	StartedAt   time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt" yaml:"finishedAt"`
	Units       int       `json:"units" yaml:"units"`
	Written     int       `json:"written" yaml:"written"`
	Removed     int       `json:"removed" yaml:"removed"`
	Diagnostics int       `json:"diagnostics" yaml:"diagnostics"`
}

// UnitRecord describes the last written version of a unit.
type UnitRecord struct {
	Key       string    `json:"key" yaml:"key"`
	Generator string    `json:"generator" yaml:"generator"`
	Path      string    `json:"path" yaml:"path"`
	Source    string    `json:"source" yaml:"source"`
	SHA256    string    `json:"sha256" yaml:"sha256"`
	Size      int       `json:"size" yaml:"size"`
	PassID    string    `json:"passId" yaml:"passId"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// StoredUnit is a record plus the unit text.
type StoredUnit struct {
	UnitRecord `yaml:",inline"`
	Text       string `json:"text" yaml:"text"`
}

// NewPassID returns a fresh pass identifier.
func NewPassID() string { return uuid.NewString() }

// Manifest reads and writes pass and unit records.
type Manifest struct {
	db *DB
}

// NewManifest creates a manifest over db.
func NewManifest(db *DB) *Manifest {
	return &Manifest{db: db}
}

// Commit records a pass: the pass row, every new or changed unit, and the
// removal of the given keys, all in one transaction.
func (m *Manifest) Commit(ctx context.Context, pass PassRecord, upserts []StoredUnit, removed []string) error {
	return m.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO passes (id, started_at, finished_at, units, written, removed, diagnostics)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			pass.ID,
			pass.StartedAt.UTC().Format(timeFormat),
			pass.FinishedAt.UTC().Format(timeFormat),
			pass.Units,
			pass.Written,
			pass.Removed,
			pass.Diagnostics,
		)
		if err != nil {
			return fmt.Errorf("failed to record pass: %w", err)
		}

		for _, u := range upserts {
			blob, err := compress(u.Text)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO units (key, generator, path, source, sha256, size, content, pass_id, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET
					generator = excluded.generator,
					path = excluded.path,
					source = excluded.source,
					sha256 = excluded.sha256,
					size = excluded.size,
					content = excluded.content,
					pass_id = excluded.pass_id,
					updated_at = excluded.updated_at
			`,
				u.Key, u.Generator, u.Path, u.Source, u.SHA256, u.Size, blob, pass.ID,
				u.UpdatedAt.UTC().Format(timeFormat),
			)
			if err != nil {
				return fmt.Errorf("failed to record unit %s: %w", u.Key, err)
			}
		}

		for _, key := range removed {
			if _, err := tx.ExecContext(ctx, `DELETE FROM units WHERE key = ?`, key); err != nil {
				return fmt.Errorf("failed to drop unit %s: %w", key, err)
			}
		}
		return nil
	})
}

// Units returns every recorded unit, sorted by key.
func (m *Manifest) Units(ctx context.Context) ([]UnitRecord, error) {
	rows, err := m.db.conn.QueryContext(ctx, `
		SELECT key, generator, path, source, sha256, size, pass_id, updated_at
		FROM units ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var out []UnitRecord
	for rows.Next() {
		var r UnitRecord
		var updated string
		if err := rows.Scan(&r.Key, &r.Generator, &r.Path, &r.Source, &r.SHA256, &r.Size, &r.PassID, &updated); err != nil {
			return nil, err
		}
		r.UpdatedAt = parseTime(updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Unit returns the record and text of one unit, or nil when the key is unknown.
func (m *Manifest) Unit(ctx context.Context, key string) (*StoredUnit, error) {
	var u StoredUnit
	var updated string
	var blob []byte
	err := m.db.conn.QueryRowContext(ctx, `
		SELECT key, generator, path, source, sha256, size, content, pass_id, updated_at
		FROM units WHERE key = ?
	`, key).Scan(&u.Key, &u.Generator, &u.Path, &u.Source, &u.SHA256, &u.Size, &blob, &u.PassID, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read unit %s: %w", key, err)
	}
	u.UpdatedAt = parseTime(updated)
	if u.Text, err = decompress(blob); err != nil {
		return nil, fmt.Errorf("unit %s: %w", key, err)
	}
	return &u, nil
}

// Passes returns up to limit passes, newest first. A limit of 0 returns all.
func (m *Manifest) Passes(ctx context.Context, limit int) ([]PassRecord, error) {
	query := `
		SELECT id, started_at, finished_at, units, written, removed, diagnostics
		FROM passes ORDER BY finished_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := m.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}
	defer rows.Close()

	var out []PassRecord
	for rows.Next() {
		var p PassRecord
		var started, finished string
		if err := rows.Scan(&p.ID, &started, &finished, &p.Units, &p.Written, &p.Removed, &p.Diagnostics); err != nil {
			return nil, err
		}
		p.StartedAt = parseTime(started)
		p.FinishedAt = parseTime(finished)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep passes. Passes that still own a
// unit are kept regardless. It returns the number of passes deleted.
func (m *Manifest) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := m.db.conn.ExecContext(ctx, `
		DELETE FROM passes
		WHERE id NOT IN (SELECT id FROM passes ORDER BY finished_at DESC, id LIMIT ?)
		  AND id NOT IN (SELECT DISTINCT pass_id FROM units)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune passes: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
