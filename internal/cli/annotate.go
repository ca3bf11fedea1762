package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tsg/internal/store"
)

// AnnotateOptions holds flags for the annotate command.
type AnnotateOptions struct {
	*RootOptions
	Database string
}

// AnnotateResult is the data payload of the annotate command.
type AnnotateResult struct {
	Run    store.CheckRun `json:"run"`
	Report CheckReport    `json:"report"`
}

// NewAnnotateCommand creates the annotate command.
func NewAnnotateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnnotateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "annotate <program.cue>",
		Short: "Check a program and store its capture annotations",
		Long: `Check a graph program and record the run in a SQLite database.

Every run is stored with the program's content hash and outcome. Passing
runs also store the resolved capture table, which execution tools read
back to find each capture in a query match by index.

Examples:
  tsg annotate --db ./tsg.db ./rules.cue
  tsg annotate --db ./tsg.db ./rules.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runAnnotate(opts *AnnotateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, err := LoadProgram(path)
	if err != nil {
		code, msg := loadErrorCode(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("failed to open database: %v", err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report := CheckProgram(loaded)
	run, err := recordRun(ctx, st, loaded, report)
	if err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	slog.Info("check run recorded", "run", run.ID, "seq", run.Seq, "status", run.Status)

	result := AnnotateResult{Run: run, Report: report}
	if formatter.Format == "json" {
		if report.OK {
			return formatter.Success(result)
		}
		code, msg := report.errorCode()
		if err := formatter.Failure(code, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "check failed")
	}

	writeCheckText(formatter.Writer, CheckResult{Programs: []CheckReport{report}})
	fmt.Fprintf(formatter.Writer, "Run %s (seq %d) recorded in %s\n", run.ID, run.Seq, opts.Database)
	if !report.OK {
		return NewExitError(ExitFailure, "check failed")
	}
	return nil
}

// recordRun stores the run and, for a passing check, its annotations.
func recordRun(ctx context.Context, st *store.Store, loaded *LoadedProgram, report CheckReport) (store.CheckRun, error) {
	run := store.NewCheckRun(loaded.Path, loaded.Source)
	if report.OK {
		run.Status = store.RunOK
		run.AnnotationsHash = report.AnnotationsHash
	} else {
		run.Status = store.RunFailed
		run.ErrorCode, run.ErrorMessage = report.errorCode()
	}

	run, err := st.WriteRun(ctx, run)
	if err != nil {
		return store.CheckRun{}, err
	}
	if report.OK {
		if err := st.WriteAnnotations(ctx, run.ID, report.annotations); err != nil {
			return store.CheckRun{}, err
		}
	}
	return run, nil
}
