package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/compress"
	"github.com/typetrace/typetrace/internal/event"
)

// NewCompressCommand creates the compress command.
func NewCompressCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		outPath   string
		showStats bool
		indent    bool
	)

	cmd := &cobra.Command{
		Use:   "compress <capture.json>",
		Short: "Compress a raw keystroke capture into an event log",
		Long: `Compress a raw capture file into the compressed event log format.

Reads raw capture events (key, special, paste, selection) from the given
file, or from stdin when the argument is "-". Steady typing runs fold into
COMPRESSED segments; everything else passes through as raw entries. The
compressed log is written to --out, or stdout when no output file is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(rootOpts, cmd, args[0], outPath, showStats, indent)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the compressed log to this file instead of stdout")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print compression statistics to stderr")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the output JSON")

	return cmd
}

func runCompress(opts *RootOptions, cmd *cobra.Command, inPath, outPath string, showStats, indent bool) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts)

	data, err := readInput(cmd, inPath)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading capture", err)
	}

	events, skipped, err := event.UnmarshalCapture(data)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitFailure, "malformed capture", err)
	}
	for _, s := range skipped {
		formatter.VerboseLog("skipped unknown capture event: %s", s)
	}

	entries := compress.NewCompressor(logger).Compress(events)

	var out []byte
	if indent {
		out, err = event.MarshalLogIndent(entries)
	} else {
		out, err = event.MarshalLog(entries)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "encoding compressed log", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, append(out, '\n'), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "writing output", err)
		}
		formatter.VerboseLog("wrote %d entries to %s", len(entries), outPath)
	} else {
		fmt.Fprintln(formatter.Writer, string(out))
	}

	if showStats {
		printStats(formatter, compress.Stats(entries))
	}
	return nil
}

// printStats writes compression statistics to the diagnostic writer so the
// compressed log on stdout stays parseable.
func printStats(formatter *OutputFormatter, stats compress.LogStats) {
	w := formatter.GetErrWriter()
	if formatter.Format == "json" {
		_ = json.NewEncoder(w).Encode(stats)
		return
	}
	fmt.Fprintf(w, "entries:     %d\n", stats.Entries)
	fmt.Fprintf(w, "segments:    %d (%d keystrokes folded)\n", stats.Segments, stats.FoldedKeys)
	fmt.Fprintf(w, "raw keys:    %d\n", stats.Keys)
	fmt.Fprintf(w, "specials:    %d\n", stats.Specials)
	fmt.Fprintf(w, "pastes:      %d\n", stats.Pastes)
	fmt.Fprintf(w, "selections:  %d\n", stats.Selections)
	fmt.Fprintf(w, "operations:  %d\n", stats.Operations)
	fmt.Fprintf(w, "ratio:       %.3f\n", stats.Ratio)
}

// readInput reads the named file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
