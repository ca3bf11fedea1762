package store

import (
	"context"
	"fmt"

	"github.com/roach88/tsg/internal/ir"
)

const selectRun = `
	SELECT id, seq, program_path, program_hash, status, error_code, error_message, annotations_hash, checker_version, ir_version
	FROM check_runs`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (CheckRun, error) {
	var (
		run    CheckRun
		status string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.ProgramPath,
		&run.ProgramHash,
		&status,
		&run.ErrorCode,
		&run.ErrorMessage,
		&run.AnnotationsHash,
		&run.CheckerVersion,
		&run.IRVersion,
	)
	if err != nil {
		return CheckRun{}, err
	}
	run.Status = RunStatus(status)
	return run, nil
}

// ReadRun retrieves a run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (CheckRun, error) {
	return scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
}

// LatestRun returns the most recent run of the program with the given
// content hash.
// Returns sql.ErrNoRows if the program was never checked.
func (s *Store) LatestRun(ctx context.Context, programHash string) (CheckRun, error) {
	return scanRun(s.db.QueryRowContext(ctx,
		selectRun+` WHERE program_hash = ? ORDER BY seq DESC LIMIT 1`, programHash))
}

// ListRuns returns all runs in seq order.
func (s *Store) ListRuns(ctx context.Context) ([]CheckRun, error) {
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []CheckRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadAnnotations rebuilds the side table stored for a run. Stanzas come
// back in file order and captures in the order they were resolved.
// Returns sql.ErrNoRows if the run stored no annotations.
func (s *Store) ReadAnnotations(ctx context.Context, runID string) (*ir.Annotations, error) {
	stanzaRows, err := s.db.QueryContext(ctx, `
		SELECT stanza_index, full_match_file_capture_index
		FROM stanza_annotations
		WHERE run_id = ?
		ORDER BY stanza_index ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stanza annotations: %w", err)
	}
	defer stanzaRows.Close()

	a := ir.NewAnnotations(0)
	position := make(map[int]int)
	for stanzaRows.Next() {
		var index, fullMatch int
		if err := stanzaRows.Scan(&index, &fullMatch); err != nil {
			return nil, fmt.Errorf("scan stanza annotation: %w", err)
		}
		position[index] = len(a.Stanzas)
		a.AddStanza(index, fullMatch)
	}
	if err := stanzaRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stanza annotations: %w", err)
	}
	if len(a.Stanzas) == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM check_runs WHERE id = ? AND status = 'ok'`, runID).Scan(&exists)
		if err != nil {
			return nil, err
		}
		// An ok run over an empty program has an empty table.
		return a, nil
	}

	captures, err := s.readCaptures(ctx, `
		SELECT stanza_index, node_id, name, stanza_capture_index, file_capture_index, quantifier
		FROM capture_resolutions
		WHERE run_id = ?
		ORDER BY stanza_index ASC, ordinal ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	for _, c := range captures {
		pos, ok := position[c.stanza]
		if !ok {
			return nil, fmt.Errorf("capture @%s refers to unknown stanza %d", c.res.Name, c.stanza)
		}
		a.Resolve(pos, c.res)
	}
	return a, nil
}

// ReadCaptureUses returns every resolved reference to the named capture
// in a run, ordered by stanza and then resolution order.
func (s *Store) ReadCaptureUses(ctx context.Context, runID, name string) ([]ir.CaptureResolution, error) {
	captures, err := s.readCaptures(ctx, `
		SELECT stanza_index, node_id, name, stanza_capture_index, file_capture_index, quantifier
		FROM capture_resolutions
		WHERE run_id = ? AND name = ?
		ORDER BY stanza_index ASC, ordinal ASC
	`, runID, name)
	if err != nil {
		return nil, err
	}
	uses := make([]ir.CaptureResolution, 0, len(captures))
	for _, c := range captures {
		uses = append(uses, c.res)
	}
	return uses, nil
}

type storedCapture struct {
	stanza int
	res    ir.CaptureResolution
}

func (s *Store) readCaptures(ctx context.Context, query string, args ...any) ([]storedCapture, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query capture resolutions: %w", err)
	}
	defer rows.Close()

	var captures []storedCapture
	for rows.Next() {
		var (
			c          storedCapture
			quantifier string
		)
		err := rows.Scan(
			&c.stanza,
			&c.res.Node,
			&c.res.Name,
			&c.res.StanzaCaptureIndex,
			&c.res.FileCaptureIndex,
			&quantifier,
		)
		if err != nil {
			return nil, fmt.Errorf("scan capture resolution: %w", err)
		}
		if c.res.Quantifier, err = ir.ParseQuantifier(quantifier); err != nil {
			return nil, fmt.Errorf("capture @%s: %w", c.res.Name, err)
		}
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capture resolutions: %w", err)
	}
	return captures, nil
}
