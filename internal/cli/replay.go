package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/event"
	"github.com/typetrace/typetrace/internal/replay"
	"github.com/typetrace/typetrace/internal/store"
	"github.com/typetrace/typetrace/internal/textbuf"
)

// replayOptions holds the flags for the replay command.
type replayOptions struct {
	Speed      float64
	MaxDelayMS int64
	Instant    bool
	DB         string
	Exam       string
	Student    string
	Question   string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay [log.json]",
		Short: "Replay a compressed event log",
		Long: `Replay a compressed event log and print the reconstructed text.

The log comes from a file argument ("-" for stdin), or from a stored
submission when --db, --exam, --student, and --question are all given.

By default playback is timed: entries play at their recorded latencies,
scaled by --speed and capped per event by --max-delay-ms. With --instant
the log is reduced in one pass and the final text printed immediately.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runReplay(rootOpts, cmd, opts, path)
		},
	}

	cmd.Flags().Float64Var(&opts.Speed, "speed", 1.0, "playback speed multiplier")
	cmd.Flags().Int64Var(&opts.MaxDelayMS, "max-delay-ms", 30_000, "cap on any single wait in milliseconds (0 = uncapped)")
	cmd.Flags().BoolVar(&opts.Instant, "instant", false, "skip timing and print the final text immediately")
	cmd.Flags().StringVar(&opts.DB, "db", "", "read the log from this SQLite database instead of a file")
	cmd.Flags().StringVar(&opts.Exam, "exam", "", "exam id (with --db)")
	cmd.Flags().StringVar(&opts.Student, "student", "", "student id (with --db)")
	cmd.Flags().StringVar(&opts.Question, "question", "", "question id (with --db)")

	return cmd
}

func runReplay(rootOpts *RootOptions, cmd *cobra.Command, opts *replayOptions, path string) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(rootOpts)

	entries, skipped, err := loadReplayLog(cmd, opts, path)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return err
	}
	for _, s := range skipped {
		formatter.VerboseLog("skipped unknown log entry: %s", s)
	}
	formatter.VerboseLog("loaded %d log entries", len(entries))

	if opts.Instant {
		snap := replay.ReduceWithLogger(entries, logger)
		return outputSnapshot(formatter, snap)
	}

	sched := replay.New(entries,
		replay.WithSpeed(opts.Speed),
		replay.WithMaxDelay(time.Duration(opts.MaxDelayMS)*time.Millisecond),
		replay.WithLogger(logger),
		replay.WithNotify(func(p replay.Progress) {
			fmt.Fprintf(formatter.GetErrWriter(), "\rreplaying %d/%d", p.Index, p.Total)
		}),
	)

	ctx := cmd.Context()
	if err := sched.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, "starting replay", err)
	}
	select {
	case <-sched.Done():
		if sched.Total() > 0 {
			fmt.Fprintln(formatter.GetErrWriter())
		}
	case <-ctx.Done():
		fmt.Fprintln(formatter.GetErrWriter())
		return WrapExitError(ExitFailure, "replay interrupted", ctx.Err())
	}
	return outputSnapshot(formatter, sched.Snapshot())
}

// loadReplayLog resolves the log source: a stored submission when --db is
// set, otherwise the file argument.
func loadReplayLog(cmd *cobra.Command, opts *replayOptions, path string) ([]event.Entry, []string, error) {
	if opts.DB != "" {
		if opts.Exam == "" || opts.Student == "" || opts.Question == "" {
			return nil, nil, NewExitError(ExitCommandError, "--db requires --exam, --student, and --question")
		}
		st, err := store.Open(opts.DB)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "opening database", err)
		}
		defer st.Close()

		sub, err := st.GetSubmission(cmd.Context(), opts.Exam, opts.Student)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("no submission for exam %q student %q", opts.Exam, opts.Student))
		}
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "reading submission", err)
		}
		q, ok := sub.Questions[opts.Question]
		if !ok {
			return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("submission has no question %q", opts.Question))
		}
		return q.EventLog, nil, nil
	}

	if path == "" {
		return nil, nil, NewExitError(ExitCommandError, "a log file argument (or --db with selectors) is required")
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "reading log", err)
	}
	entries, skipped, err := event.UnmarshalLog(data)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "malformed log", err)
	}
	return entries, skipped, nil
}

// outputSnapshot prints the reconstructed buffer state.
func outputSnapshot(formatter *OutputFormatter, snap textbuf.Snapshot) error {
	if formatter.Format == "json" {
		return formatter.Success(snap)
	}
	fmt.Fprintln(formatter.Writer, snap.Text)
	return nil
}
