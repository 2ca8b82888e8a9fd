package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/config"
	"github.com/typetrace/typetrace/internal/examdef"
	"github.com/typetrace/typetrace/internal/server"
	"github.com/typetrace/typetrace/internal/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		configPath string
		addr       string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the submission server",
		Long: `Run the HTTP server that accepts exam submissions, lists stored
submissions, and streams live replays over WebSocket.

Configuration comes from a YAML file (--config), TYPETRACE_* environment
variables, and built-in defaults, in that order of precedence. --addr and
--db override the resolved configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd, configPath, addr, dbPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command, configPath, addr, dbPath string) error {
	logger := newLogger(opts)

	cfg, err := config.Load(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	if addr != "" {
		cfg.HTTP.Addr = addr
	}
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	st, err := store.Open(cfg.DB.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	var srvOpts []server.Option
	if cfg.Exam.SpecsDir != "" {
		exam, errs := examdef.Load(cfg.Exam.SpecsDir)
		if len(errs) > 0 {
			for _, e := range errs {
				logger.Error("exam definition error", "error", e)
			}
			return NewExitError(ExitFailure, fmt.Sprintf("exam definitions failed to compile with %d error(s)", len(errs)))
		}
		logger.Info("exam definition loaded", "examId", exam.ID, "questions", len(exam.Questions))
		srvOpts = append(srvOpts, server.WithExam(exam))
	}

	srv := server.New(cfg, st, logger, srvOpts...)
	if err := srv.Run(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	return nil
}
