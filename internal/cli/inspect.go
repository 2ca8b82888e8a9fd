package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/store"
)

// InspectRow is one stored submission in inspect output.
type InspectRow struct {
	ExamID         string `json:"examId"`
	StudentID      string `json:"studentId"`
	StudentName    string `json:"studentName"`
	SubmissionTime string `json:"submissionTime"`
	Revision       string `json:"revision"`
	Questions      int    `json:"questions"`
	Events         int    `json:"events"`
}

// InspectResult is the inspect command's JSON payload.
type InspectResult struct {
	Count       int          `json:"count"`
	Submissions []InspectRow `json:"submissions"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		examID string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored submissions",
		Long: `List the submissions stored in a database: exam, student, submission
time, revision hash, and per-submission question and event counts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd, dbPath, examID)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	cmd.Flags().StringVar(&examID, "exam", "", "only list submissions for this exam")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, dbPath, examID string) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	var summaries []store.Summary
	if examID != "" {
		summaries, err = st.ListByExam(ctx, examID)
	} else {
		summaries, err = st.ListAll(ctx)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing submissions", err)
	}

	rows := make([]InspectRow, 0, len(summaries))
	for _, s := range summaries {
		row := InspectRow{
			ExamID:         s.ExamID,
			StudentID:      s.StudentID,
			StudentName:    s.StudentName,
			SubmissionTime: s.SubmissionTime.Format("2006-01-02 15:04:05"),
			Revision:       s.Revision,
		}
		sub, err := st.GetSubmission(ctx, s.ExamID, s.StudentID)
		if err != nil {
			_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reading submission", err)
		}
		row.Questions = len(sub.Questions)
		for _, q := range sub.Questions {
			row.Events += len(q.EventLog)
		}
		rows = append(rows, row)
	}

	if formatter.Format == "json" {
		return formatter.Success(InspectResult{Count: len(rows), Submissions: rows})
	}

	if len(rows) == 0 {
		fmt.Fprintln(formatter.Writer, "no submissions")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXAM\tSTUDENT\tNAME\tSUBMITTED\tQUESTIONS\tEVENTS\tREVISION")
	for _, r := range rows {
		rev := r.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ExamID, r.StudentID, r.StudentName, r.SubmissionTime, r.Questions, r.Events, rev)
	}
	return tw.Flush()
}
