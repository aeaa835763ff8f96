package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-records/internal/client"
	"quiz-records/internal/records"
)

func (a *app) newStatsCommand() *cobra.Command {
	var (
		serverURL    string
		listStudents bool
	)

	cmd := &cobra.Command{
		Use:   "stats [student-id]",
		Short: "Print statistics from a running service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.NewHTTPClient(serverURL, nil)

			health, err := api.Health(cmd.Context())
			if err != nil {
				return describeClientError(err, api.BaseURL())
			}
			if health.Status != "ok" {
				return fmt.Errorf("records service at %s reports status %q", api.BaseURL(), health.Status)
			}

			switch {
			case listStudents:
				students, err := api.ListStudents(cmd.Context())
				if err != nil {
					return describeClientError(err, api.BaseURL())
				}
				return printStudents(a.out, students)

			case len(args) == 0:
				stats, err := api.QuizStats(cmd.Context())
				if err != nil {
					return describeClientError(err, api.BaseURL())
				}
				fmt.Fprintf(a.out, "%d students, %d quiz results\n", health.Students, health.QuizResults)
				return printQuizStats(a.out, stats)
			}

			studentID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			stats, err := api.StudentStats(cmd.Context(), studentID)
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.NotFound() {
				return fmt.Errorf("no results for student %d", studentID)
			}
			if err != nil {
				return describeClientError(err, api.BaseURL())
			}
			fmt.Fprintf(a.out, "student %d: %d quizzes, average %s%%\n",
				stats.StudentID, stats.QuizzesTaken, formatFloat(stats.AveragePercentage))
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "base URL of the records service")
	cmd.Flags().BoolVar(&listStudents, "list-students", false, "list students instead of quiz statistics")
	return cmd
}

func printStudents(out io.Writer, students []records.Student) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPROGRAM")
	for _, student := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\n", student.ID, student.Name, student.Program)
	}
	return w.Flush()
}

func printQuizStats(out io.Writer, stats []records.QuizStats) error {
	if len(stats) == 0 {
		fmt.Fprintln(out, "no quiz results")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUIZ\tPARTICIPANTS\tAVERAGE\tSTD DEV\tMIN\tMAX")
	for _, item := range stats {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%d\n",
			item.QuizID, item.Participants, formatFloat(item.AverageScore), formatFloat(item.StdDev), item.MinScore, item.MaxScore)
	}
	return w.Flush()
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, client.ErrServiceUnavailable) {
		return fmt.Errorf("records service unavailable at %s", serverURL)
	}
	return err
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
