package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrPassNotFound is returned when a pass ID has no record.
var ErrPassNotFound = errors.New("pass not found")

// ListPasses returns up to limit passes, newest first, with their builds
// but without files. A limit of zero or less returns every pass.
//
// Returns an empty slice (not nil) when nothing has been recorded.
func (s *Store) ListPasses(ctx context.Context, limit int) ([]Pass, error) {
	query := `
		SELECT id, seq, root, sources, recorded_at
		FROM passes
		ORDER BY seq DESC, id COLLATE BINARY ASC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	passes, err := s.queryPasses(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	// Builds are read after the pass rows are closed; the pool holds a
	// single connection.
	for i := range passes {
		builds, err := s.passBuilds(ctx, passes[i].ID)
		if err != nil {
			return nil, err
		}
		passes[i].Builds = builds
	}
	return passes, nil
}

// ReadPass returns one pass with its builds and files.
func (s *Store) ReadPass(ctx context.Context, id string) (Pass, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, root, sources, recorded_at
		FROM passes
		WHERE id = ?
	`, id)
	p, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Pass{}, fmt.Errorf("read pass %s: %w", id, ErrPassNotFound)
	}
	if err != nil {
		return Pass{}, err
	}

	if p.Builds, err = s.passBuilds(ctx, id); err != nil {
		return Pass{}, err
	}
	if p.Files, err = s.PassFiles(ctx, id); err != nil {
		return Pass{}, err
	}
	return p, nil
}

// PassFiles returns the files of one pass ordered by path.
// Returns an empty slice (not nil) for an unknown pass.
func (s *Store) PassFiles(ctx context.Context, id string) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, written
		FROM pass_files
		WHERE pass_id = ?
		ORDER BY path COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query pass files: %w", err)
	}
	defer rows.Close()

	files := []File{}
	for rows.Next() {
		var f File
		var written int
		if err := rows.Scan(&f.Path, &written); err != nil {
			return nil, fmt.Errorf("scan pass file: %w", err)
		}
		f.Written = written != 0
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pass files: %w", err)
	}
	return files, nil
}

// LastWrite returns the seq and ID of the most recent pass that rewrote
// path. ok is false if no pass ever did.
func (s *Store) LastWrite(ctx context.Context, path string) (id string, seq int64, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT p.id, p.seq
		FROM pass_files f
		JOIN passes p ON p.id = f.pass_id
		WHERE f.path = ? AND f.written = 1
		ORDER BY p.seq DESC
		LIMIT 1
	`, path).Scan(&id, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("query last write: %w", err)
	}
	return id, seq, true, nil
}

func (s *Store) queryPasses(ctx context.Context, query string, args ...any) ([]Pass, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	passes := []Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

func (s *Store) passBuilds(ctx context.Context, id string) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT build_id, executable, objdir
		FROM pass_builds
		WHERE pass_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query pass builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		var b Build
		if err := rows.Scan(&b.BuildID, &b.Executable, &b.ObjDir); err != nil {
			return nil, fmt.Errorf("scan pass build: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pass builds: %w", err)
	}
	return builds, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPass(row scanner) (Pass, error) {
	var p Pass
	var sourcesJSON, recordedAt string
	if err := row.Scan(&p.ID, &p.Seq, &p.Root, &sourcesJSON, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pass{}, err
		}
		return Pass{}, fmt.Errorf("scan pass: %w", err)
	}

	sources, err := unmarshalSources(sourcesJSON)
	if err != nil {
		return Pass{}, err
	}
	p.Sources = sources

	if p.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return Pass{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	return p, nil
}
