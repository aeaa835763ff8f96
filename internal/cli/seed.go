package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quiz-records/internal/config"
	"quiz-records/internal/seed"
)

func (a *app) newSeedCommand() *cobra.Command {
	opts := seed.DefaultOptions()
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write random demo students and quiz results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.StudentsPath == "" {
				return config.ErrMissingStudentsPath
			}
			if err := seed.WriteFiles(a.cfg.StudentsPath, a.cfg.ResultsPath, opts, force, a.logger); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d students to %s\n", opts.Students, a.cfg.StudentsPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Students, "count", opts.Students, "number of students")
	flags.IntVar(&opts.Quizzes, "quizzes", opts.Quizzes, "number of quizzes")
	flags.IntVar(&opts.FirstID, "first-id", opts.FirstID, "id of the first student")
	flags.IntVar(&opts.MaxScore, "max-score", opts.MaxScore, "maximum score per quiz")
	flags.IntVar(&opts.Participation, "participation", opts.Participation, "percent chance a student took each quiz")
	flags.BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}
