package records

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Service owns both tables and is the only way to reach them. One RWMutex
// guards the pair: reads share it, every mutation holds it exclusively, so a
// cascade delete never interleaves with a listing or another write.
type Service struct {
	mu       sync.RWMutex
	students StudentRepository
	results  ResultRepository
	logger   logrus.FieldLogger

	quizStats atomic.Pointer[[]QuizStats]
}

func NewService(students StudentRepository, results ResultRepository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		students: students,
		results:  results,
		logger:   logger,
	}
}

func (s *Service) ListStudents() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.students.All()
}

func (s *Service) GetStudent(id int) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students.Get(id)
	if !ok {
		return Student{}, ErrStudentNotFound
	}
	return student, nil
}

func (s *Service) CreateStudent(input StudentInput) (Student, error) {
	input, err := input.normalize()
	if err != nil {
		return Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student := Student{
		ID:      s.students.NextID(),
		Name:    input.Name,
		Program: input.Program,
	}
	s.students.Put(student)

	if err := s.students.Save(); err != nil {
		s.students.Remove(student.ID)
		return Student{}, persistenceError("create student", err)
	}

	s.logger.WithField("student_id", student.ID).Info("student created")
	return student, nil
}

// UpdateStudent replaces the mutable fields of an existing student. Applying
// the same input twice yields the same stored state.
func (s *Service) UpdateStudent(id int, input StudentInput) (Student, error) {
	input, err := input.normalize()
	if err != nil {
		return Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.students.Get(id)
	if !ok {
		return Student{}, ErrStudentNotFound
	}

	updated := Student{
		ID:      id,
		Name:    input.Name,
		Program: input.Program,
	}
	s.students.Put(updated)

	if err := s.students.Save(); err != nil {
		s.students.Put(previous)
		return Student{}, persistenceError("update student", err)
	}

	s.logger.WithField("student_id", id).Info("student updated")
	return updated, nil
}

// DeleteStudent removes a student and every quiz result that references it.
//
// The pair behaves as one transaction for the caller:
//   - if the student file cannot be saved, nothing changes and no result is
//     touched;
//   - if the results file cannot be saved, both tables are restored in memory
//     and the student file is re-saved with the student back in it.
//
// Saves are atomic renames, so a failed results save leaves the old results
// file intact. Only a failed compensating save can leave the student file
// without a student that results still reference; that state is logged and
// repaired by the next successful student save.
func (s *Service) DeleteStudent(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	studentsBefore := s.students.All()
	if _, ok := s.students.Remove(id); !ok {
		return ErrStudentNotFound
	}
	if err := s.students.Save(); err != nil {
		s.students.Replace(studentsBefore)
		return persistenceError("delete student", err)
	}

	resultsBefore := s.results.All()
	kept := make([]QuizResult, 0, len(resultsBefore))
	for _, result := range resultsBefore {
		if result.StudentID != id {
			kept = append(kept, result)
		}
	}

	removed := len(resultsBefore) - len(kept)
	if removed > 0 {
		s.results.Replace(kept)
		if err := s.results.Save(); err != nil {
			s.results.Replace(resultsBefore)
			s.students.Replace(studentsBefore)
			if restoreErr := s.students.Save(); restoreErr != nil {
				s.logger.WithFields(logrus.Fields{
					"student_id":    id,
					"results_error": err,
					"restore_error": restoreErr,
				}).Error("student file is missing a student still referenced by quiz results")
			}
			return persistenceError("delete quiz results", err)
		}
		s.invalidateQuizStats()
	}

	s.logger.WithFields(logrus.Fields{
		"student_id":      id,
		"results_removed": removed,
	}).Info("student deleted")
	return nil
}

func (s *Service) QuizStats() []QuizStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.quizStatsLocked()
}

func (s *Service) quizStatsLocked() []QuizStats {
	if cached, ok := s.cachedQuizStats(); ok {
		return cached
	}

	stats := QuizStatsByGroup(s.results.All(), byQuiz)
	s.setCachedQuizStats(stats)
	return stats
}

func (s *Service) StudentStats(id int) (StudentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := StudentStatsFor(s.results.All(), forStudent(id))
	if !ok {
		return StudentStats{}, ErrNoResults
	}
	stats.StudentID = id
	return stats, nil
}

// Summary returns per-quiz statistics and, in student listing order, the
// statistics of every student with at least one result. Both come from the
// same state.
func (s *Service) Summary() ([]QuizStats, []StudentStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.quizStatsLocked(), s.allStudentStatsLocked()
}

func (s *Service) allStudentStatsLocked() []StudentStats {
	results := s.results.All()
	students := s.students.All()
	out := make([]StudentStats, 0, len(students))
	for _, student := range students {
		stats, ok := StudentStatsFor(results, forStudent(student.ID))
		if !ok {
			continue
		}
		stats.StudentID = student.ID
		out = append(out, stats)
	}
	return out
}

func (s *Service) Counts() (students, results int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.students.All()), len(s.results.All())
}

// OrphanedResults lists results whose student does not exist. Loaded data may
// contain them; no operation of the service creates new ones.
func (s *Service) OrphanedResults() []QuizResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orphans []QuizResult
	for _, result := range s.results.All() {
		if _, ok := s.students.Get(result.StudentID); !ok {
			orphans = append(orphans, result)
		}
	}
	return orphans
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
