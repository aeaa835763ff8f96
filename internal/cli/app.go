// Package cli wires the records service commands.
package cli

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quiz-records/internal/config"
)

type app struct {
	out    io.Writer
	errOut io.Writer
	cfg    config.Config
	logger *logrus.Logger
}

// Run executes the command line in args. Commands stop when ctx is done.
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := newRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{
		out:    out,
		errOut: errOut,
		cfg:    config.FromEnv(),
	}

	root := &cobra.Command{
		Use:           "records-service",
		Short:         "Student and quiz result records over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := config.NewLogger(a.errOut, a.cfg.LogLevel, a.cfg.LogFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.StudentsPath, "students", a.cfg.StudentsPath, "students file (env "+config.EnvStudentsPath+")")
	flags.StringVar(&a.cfg.ResultsPath, "results", a.cfg.ResultsPath, "quiz results file (env "+config.EnvResultsPath+")")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "log format: text or json")

	root.AddCommand(
		a.newServeCommand(),
		a.newSeedCommand(),
		a.newExportCommand(),
		a.newStatsCommand(),
	)
	return root
}
