package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tsg/internal/ir"
)

func TestNewCheckRun(t *testing.T) {
	run := NewCheckRun("prog.cue", []byte("stanzas: []"))

	assert.Len(t, run.ID, 36)
	assert.Equal(t, "prog.cue", run.ProgramPath)
	assert.Equal(t, ir.ProgramHash([]byte("stanzas: []")), run.ProgramHash)
	assert.Equal(t, ir.CheckerVersion, run.CheckerVersion)
	assert.Equal(t, ir.IRVersion, run.IRVersion)
	assert.NotEqual(t, run.ID, NewCheckRun("prog.cue", nil).ID)
}

func TestWriteRunAssignsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.WriteRun(ctx, createTestRun("run-a", "h1"))
	require.NoError(t, err)
	second, err := s.WriteRun(ctx, createTestRun("run-b", "h1"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
}

func TestWriteRunIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-a", "h1")
	written, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	run.Status = RunFailed
	again, err := s.WriteRun(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, written, again, "second write returns the stored run")

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRunRejectsInvalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, CheckRun{Status: RunOK})
	assert.ErrorContains(t, err, "id is required")

	_, err = s.WriteRun(ctx, CheckRun{ID: "x", Status: "pending"})
	assert.ErrorContains(t, err, "invalid status")
}

func TestReadRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-a", "h1")
	run.Status = RunFailed
	run.ErrorCode = "EXPECTED_LIST_VALUE"
	run.ErrorMessage = "Expected list value at (5, 3)"
	written, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, written, got)

	_, err = s.ReadRun(ctx, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestLatestRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b"} {
		_, err := s.WriteRun(ctx, createTestRun(id, "h1"))
		require.NoError(t, err)
	}
	_, err := s.WriteRun(ctx, createTestRun("run-c", "h2"))
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "run-b", latest.ID)

	_, err = s.LatestRun(ctx, "never-checked")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListRunsOrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)

	for _, id := range []string{"z", "a", "m"} {
		_, err := s.WriteRun(ctx, createTestRun(id, "h"))
		require.NoError(t, err)
	}
	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"z", "a", "m"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
}

func TestAnnotationsRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun("run-a", "h1"))
	require.NoError(t, err)

	want := createTestAnnotations()
	require.NoError(t, s.WriteAnnotations(ctx, "run-a", want))

	got, err := s.ReadAnnotations(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, want.Stanzas, got.Stanzas)
	assert.Equal(t, ir.MustAnnotationsHash(want), ir.MustAnnotationsHash(got))

	res, ok := got.Capture(3)
	require.True(t, ok)
	assert.Equal(t, ir.OneOrMore, res.Quantifier)
}

func TestWriteAnnotationsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun("run-a", "h1"))
	require.NoError(t, err)

	a := createTestAnnotations()
	require.NoError(t, s.WriteAnnotations(ctx, "run-a", a))
	require.NoError(t, s.WriteAnnotations(ctx, "run-a", a))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM capture_resolutions WHERE run_id = ?`, "run-a").Scan(&count))
	assert.Equal(t, 4, count)
}

func TestWriteAnnotationsRequiresRun(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteAnnotations(context.Background(), "missing", createTestAnnotations())
	assert.Error(t, err)
}

func TestReadAnnotationsEmptyProgram(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun("run-a", "h1"))
	require.NoError(t, err)
	require.NoError(t, s.WriteAnnotations(ctx, "run-a", ir.NewAnnotations(0)))

	got, err := s.ReadAnnotations(ctx, "run-a")
	require.NoError(t, err)
	assert.Empty(t, got.Stanzas)
}

func TestReadAnnotationsFailedRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-a", "h1")
	run.Status = RunFailed
	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	_, err = s.ReadAnnotations(ctx, "run-a")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = s.ReadAnnotations(ctx, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestReadCaptureUses(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, createTestRun("run-a", "h1"))
	require.NoError(t, err)
	require.NoError(t, s.WriteAnnotations(ctx, "run-a", createTestAnnotations()))

	uses, err := s.ReadCaptureUses(ctx, "run-a", "args")
	require.NoError(t, err)
	require.Len(t, uses, 2)
	assert.Equal(t, ir.ZeroOrMore, uses[0].Quantifier)
	assert.Equal(t, ir.OneOrMore, uses[1].Quantifier)

	uses, err = s.ReadCaptureUses(ctx, "run-a", "nothing")
	require.NoError(t, err)
	assert.Empty(t, uses)
}
