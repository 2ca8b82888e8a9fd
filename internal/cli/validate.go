package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/examdef"
)

// ValidationIssue is one exam definition error in validate output.
type ValidationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	ExamID string            `json:"examId,omitempty"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate exam definitions",
		Long: `Compile the CUE exam definitions in a directory and report every
structural error found: missing or empty ids, duplicate question ids,
non-positive limits. Reports all errors in one pass rather than stopping
at the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	exam, errs := examdef.Load(defsDir)
	if len(errs) == 0 {
		return outputValidateSuccess(formatter, exam)
	}

	issues := make([]ValidationIssue, 0, len(errs))
	for _, err := range errs {
		var cerr *examdef.CompileError
		if errors.As(err, &cerr) {
			issue := ValidationIssue{Field: cerr.Field, Message: cerr.Message}
			if cerr.Pos.IsValid() {
				issue.File = cerr.Pos.Filename()
				issue.Line = cerr.Pos.Line()
			}
			issues = append(issues, issue)
			continue
		}
		issues = append(issues, ValidationIssue{Message: err.Error()})
	}
	return outputValidationErrors(formatter, issues)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, exam *examdef.Exam) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, ExamID: exam.ID})
	}

	fmt.Fprintf(formatter.Writer, "✓ exam %q valid (%d question(s))\n", exam.ID, len(exam.Questions))
	return nil
}

// outputValidationErrors outputs the collected definition errors.
func outputValidationErrors(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeDefs, "exam definitions failed to compile", ValidationResult{
			Valid:  false,
			Errors: issues,
		})
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		if issue.File != "" {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
		}
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Field, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s\n\n", issue.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
