package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/tsg/internal/checker"
	"github.com/roach88/tsg/internal/compiler"
	"github.com/roach88/tsg/internal/ir"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Watch bool
}

// CheckFailure describes the check error of a program.
type CheckFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
	Line    int    `json:"line"`   // one-based
	Column  int    `json:"column"` // one-based
}

// CheckReport is the outcome of checking one program.
type CheckReport struct {
	Program         string                     `json:"program"`
	OK              bool                       `json:"ok"`
	ProgramHash     string                     `json:"program_hash"`
	Stanzas         int                        `json:"stanzas"`
	Captures        int                        `json:"captures"`
	AnnotationsHash string                     `json:"annotations_hash,omitempty"`
	Validation      []compiler.ValidationError `json:"validation,omitempty"`
	Error           *CheckFailure              `json:"error,omitempty"`

	annotations *ir.Annotations
}

// errorCode returns the code that summarizes a failed report.
func (r *CheckReport) errorCode() (string, string) {
	if r.Error != nil {
		return r.Error.Code, r.Error.Message
	}
	if len(r.Validation) > 0 {
		return r.Validation[0].Code, r.Validation[0].Message
	}
	return "", ""
}

// CheckResult is the data payload of the check command.
type CheckResult struct {
	Programs []CheckReport `json:"programs"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <program.cue|dir>",
		Short: "Check graph programs",
		Long: `Compile, validate and check graph programs.

Checks a single CUE program, or every .cue file below a directory. Each
capture used in a stanza body is resolved against the stanza's pattern
and the combined file query.

With --watch, the programs are re-checked whenever they are written,
until interrupted.

Exit codes:
  0 - All programs passed
  1 - One or more programs failed the check
  2 - Command error (missing path, CUE syntax errors, etc.)

Examples:
  tsg check ./rules.cue
  tsg check ./programs --format json
  tsg check --watch ./rules.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-check programs when they change")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	paths, err := ProgramPaths(path)
	if err != nil {
		code, msg := loadErrorCode(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	formatter.VerboseLog("Checking %d program(s)", len(paths))

	checkErr := checkAndReport(formatter, paths)
	if !opts.Watch {
		return checkErr
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := NewWatcher(paths, slog.Default())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", err)
	}
	fmt.Fprintf(formatter.GetErrWriter(), "Watching %d program(s). Press Ctrl-C to stop.\n", len(paths))

	err = watcher.Run(ctx, func(changed string) {
		_ = checkAndReport(formatter, []string{changed})
	})
	if err != nil {
		return err
	}
	// The exit status reflects the initial check.
	return checkErr
}

// checkAndReport checks paths and writes the result. Load errors stop the
// run with ExitCommandError; failing checks return ExitFailure.
func checkAndReport(formatter *OutputFormatter, paths []string) error {
	result := CheckResult{Programs: make([]CheckReport, 0, len(paths))}
	for _, p := range paths {
		loaded, err := LoadProgram(p)
		if err != nil {
			code, msg := loadErrorCode(err)
			_ = formatter.Error(code, msg, map[string]string{"program": p})
			return NewExitError(ExitCommandError, msg)
		}

		report := CheckProgram(loaded)
		slog.Debug("program checked", "program", p, "ok", report.OK, "captures", report.Captures)
		result.Programs = append(result.Programs, report)
		if report.OK {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		if result.Failed == 0 {
			return formatter.Success(result)
		}
		code, msg := firstFailure(result)
		if err := formatter.Failure(code, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d program(s) failed", result.Failed))
	}

	writeCheckText(formatter.Writer, result)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d program(s) failed", result.Failed))
	}
	return nil
}

func firstFailure(result CheckResult) (string, string) {
	for _, r := range result.Programs {
		if !r.OK {
			return r.errorCode()
		}
	}
	return "", ""
}

// CheckProgram validates and checks a loaded program.
func CheckProgram(loaded *LoadedProgram) CheckReport {
	report := CheckReport{
		Program:     loaded.Path,
		ProgramHash: ir.ProgramHash(loaded.Source),
		Stanzas:     len(loaded.Program.File.Stanzas),
	}

	if verrs := compiler.Validate(loaded.Program); len(verrs) > 0 {
		report.Validation = verrs
		return report
	}

	annotations, err := checker.Check(loaded.Program.File, loaded.Program.Symbols)
	if err != nil {
		report.Error = checkFailure(err)
		return report
	}

	hash, err := ir.AnnotationsHash(annotations)
	if err != nil {
		report.Error = &CheckFailure{Code: ErrCodeGeneric, Message: err.Error()}
		return report
	}
	report.OK = true
	report.Captures = annotations.CaptureCount()
	report.AnnotationsHash = hash
	report.annotations = annotations
	return report
}

func checkFailure(err error) *CheckFailure {
	var ce *checker.CheckError
	if !errors.As(err, &ce) {
		return &CheckFailure{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return &CheckFailure{
		Code:    string(ce.Code),
		Message: ce.Error(),
		Name:    ce.Name,
		Line:    ce.Location.Row + 1,
		Column:  ce.Location.Column + 1,
	}
}

func writeCheckText(w io.Writer, result CheckResult) {
	for _, r := range result.Programs {
		if r.OK {
			fmt.Fprintf(w, "✓ %s (%d stanza(s), %d capture(s) resolved)\n", r.Program, r.Stanzas, r.Captures)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Program)
		for _, v := range r.Validation {
			if v.Line > 0 {
				fmt.Fprintf(w, "  line %d: %s: %s\n", v.Line, v.Code, v.Message)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", v.Code, v.Message)
			}
		}
		if r.Error != nil {
			fmt.Fprintf(w, "  %s: %s\n", r.Error.Code, r.Error.Message)
		}
	}

	if len(result.Programs) > 1 {
		fmt.Fprintf(w, "\nCheck Summary: %d passed, %d failed, %d total\n",
			result.Passed, result.Failed, len(result.Programs))
	}
}
