package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordPass stores p with its builds and files in one transaction and
// returns it with ID, Seq and RecordedAt filled in. An empty ID gets a
// fresh UUIDv7; a zero RecordedAt gets the current time.
//
// Recording a pass whose ID already exists is a no-op that returns the
// stored seq, so retried writes do not duplicate history.
func (s *Store) RecordPass(ctx context.Context, p Pass) (Pass, error) {
	if p.ID == "" {
		p.ID = uuid.Must(uuid.NewV7()).String()
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now()
	}
	p.RecordedAt = p.RecordedAt.UTC()

	sourcesJSON, err := marshalSources(p.Sources)
	if err != nil {
		return Pass{}, fmt.Errorf("write pass: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Pass{}, fmt.Errorf("write pass: begin: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM passes WHERE id = ?`, p.ID).Scan(&existing)
	switch {
	case err == nil:
		p.Seq = existing
		return p, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Pass{}, fmt.Errorf("write pass: lookup: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM passes`).Scan(&p.Seq); err != nil {
		return Pass{}, fmt.Errorf("write pass: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO passes (id, seq, root, sources, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		p.ID,
		p.Seq,
		p.Root,
		sourcesJSON,
		p.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Pass{}, fmt.Errorf("write pass: %w", err)
	}

	for i, b := range p.Builds {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pass_builds (pass_id, position, build_id, executable, objdir)
			VALUES (?, ?, ?, ?, ?)
		`, p.ID, i, b.BuildID, b.Executable, b.ObjDir)
		if err != nil {
			return Pass{}, fmt.Errorf("write pass build %s: %w", b.BuildID, err)
		}
	}

	for _, f := range p.Files {
		// A destination shared by several builds is reported once.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pass_files (pass_id, path, written)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, p.ID, f.Path, boolToInt(f.Written))
		if err != nil {
			return Pass{}, fmt.Errorf("write pass file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Pass{}, fmt.Errorf("write pass: commit: %w", err)
	}
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
