package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quiz-records/internal/config"
	"quiz-records/internal/report"
)

const defaultExportPath = "quiz-stats.xlsx"

func (a *app) newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [output.xlsx]",
		Short: "Write quiz and student statistics to a spreadsheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.StudentsPath == "" {
				return config.ErrMissingStudentsPath
			}
			output := defaultExportPath
			if len(args) > 0 {
				output = args[0]
			}

			service, err := loadService(a.cfg, a.logger)
			if err != nil {
				return err
			}

			quizzes, students := service.Summary()
			data := report.Data{
				Quizzes:  quizzes,
				Students: students,
			}
			if err := report.WriteFile(output, data); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d quizzes and %d students to %s\n", len(data.Quizzes), len(data.Students), output)
			return nil
		},
	}
}
