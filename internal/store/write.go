package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tsg/internal/ir"
)

// WriteRun inserts a check run and returns it with its sequence number.
// A run whose ID is already stored is left untouched and returned as
// stored.
func (s *Store) WriteRun(ctx context.Context, run CheckRun) (CheckRun, error) {
	if run.ID == "" {
		return CheckRun{}, fmt.Errorf("write run: id is required")
	}
	if run.Status != RunOK && run.Status != RunFailed {
		return CheckRun{}, fmt.Errorf("write run: invalid status %q", run.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CheckRun{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if run.Seq == 0 {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM check_runs`).Scan(&run.Seq); err != nil {
			return CheckRun{}, fmt.Errorf("write run: next seq: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO check_runs
		(id, seq, program_path, program_hash, status, error_code, error_message, annotations_hash, checker_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.ProgramPath,
		run.ProgramHash,
		string(run.Status),
		run.ErrorCode,
		run.ErrorMessage,
		run.AnnotationsHash,
		run.CheckerVersion,
		run.IRVersion,
	)
	if err != nil {
		return CheckRun{}, fmt.Errorf("write run: insert: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return CheckRun{}, fmt.Errorf("write run: rows affected: %w", err)
	}

	if inserted == 0 {
		stored, err := scanRun(tx.QueryRowContext(ctx, selectRun+` WHERE id = ?`, run.ID))
		if err != nil {
			return CheckRun{}, fmt.Errorf("write run: read existing: %w", err)
		}
		return stored, nil
	}

	if err := tx.Commit(); err != nil {
		return CheckRun{}, fmt.Errorf("write run: commit: %w", err)
	}
	slog.Debug("check run written", "id", run.ID, "seq", run.Seq, "status", run.Status)
	return run, nil
}

// WriteAnnotations stores the side table of a run. The run must already
// be written. Writing the same annotations again is a no-op.
func (s *Store) WriteAnnotations(ctx context.Context, runID string, a *ir.Annotations) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write annotations: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, stanza := range a.Stanzas {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stanza_annotations
			(run_id, stanza_index, full_match_file_capture_index)
			VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, runID, stanza.Index, stanza.FullMatchFileCaptureIndex)
		if err != nil {
			return fmt.Errorf("write annotations: stanza %d: %w", stanza.Index, err)
		}

		for ordinal, res := range stanza.Captures {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO capture_resolutions
				(run_id, stanza_index, ordinal, node_id, name, stanza_capture_index, file_capture_index, quantifier)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT DO NOTHING
			`,
				runID,
				stanza.Index,
				ordinal,
				res.Node,
				res.Name,
				res.StanzaCaptureIndex,
				res.FileCaptureIndex,
				res.Quantifier.String(),
			)
			if err != nil {
				return fmt.Errorf("write annotations: capture @%s: %w", res.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write annotations: commit: %w", err)
	}
	slog.Debug("annotations written", "run", runID, "stanzas", len(a.Stanzas), "captures", a.CaptureCount())
	return nil
}
