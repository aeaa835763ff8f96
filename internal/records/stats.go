package records

import (
	"math"
	"sort"
)

type QuizStats struct {
	QuizID       int
	Participants int
	AverageScore float64
	StdDev       float64
	MinScore     int
	MaxScore     int
}

type StudentStats struct {
	StudentID         int
	QuizzesTaken      int
	AveragePercentage float64
}

// QuizStatsByGroup groups results by keyOf and summarizes the raw scores of
// each group. Groups come back ordered by ascending key and only exist for
// keys that were observed, so every group has at least one participant.
//
// Scores are not normalized by MaxScore: a group mixing different maximums
// averages raw points.
func QuizStatsByGroup(results []QuizResult, keyOf func(QuizResult) int) []QuizStats {
	groups := make(map[int][]int)
	for _, result := range results {
		key := keyOf(result)
		groups[key] = append(groups[key], result.Score)
	}

	keys := make([]int, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	stats := make([]QuizStats, 0, len(keys))
	for _, key := range keys {
		stats = append(stats, summarizeScores(key, groups[key]))
	}
	return stats
}

func summarizeScores(key int, scores []int) QuizStats {
	stats := QuizStats{
		QuizID:       key,
		Participants: len(scores),
		MinScore:     scores[0],
		MaxScore:     scores[0],
	}

	sum := 0.0
	for _, score := range scores {
		sum += float64(score)
		if score < stats.MinScore {
			stats.MinScore = score
		}
		if score > stats.MaxScore {
			stats.MaxScore = score
		}
	}
	n := float64(len(scores))
	stats.AverageScore = sum / n

	// Population variance: divide by n, not n-1.
	squares := 0.0
	for _, score := range scores {
		delta := float64(score) - stats.AverageScore
		squares += delta * delta
	}
	stats.StdDev = math.Sqrt(squares / n)

	return stats
}

// StudentStatsFor averages the percentage of every result accepted by keep.
// ok is false when nothing matched; that is "no data", not a zero average.
func StudentStatsFor(results []QuizResult, keep func(QuizResult) bool) (stats StudentStats, ok bool) {
	count := 0
	sum := 0.0
	for _, result := range results {
		if !keep(result) {
			continue
		}
		count++
		sum += result.Percentage()
	}
	if count == 0 {
		return StudentStats{}, false
	}

	return StudentStats{
		QuizzesTaken:      count,
		AveragePercentage: sum / float64(count),
	}, true
}

func byQuiz(result QuizResult) int {
	return result.QuizID
}

func forStudent(id int) func(QuizResult) bool {
	return func(result QuizResult) bool {
		return result.StudentID == id
	}
}
