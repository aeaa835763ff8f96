package records

// Quiz statistics are recomputed only after the results table changes.
// Readers hold the read lock and writers clear the cache under the write
// lock, so a reader can never store statistics older than the last clear.

func (s *Service) cachedQuizStats() ([]QuizStats, bool) {
	cached := s.quizStats.Load()
	if cached == nil {
		return nil, false
	}
	// Shared slice; callers treat it as read-only.
	return *cached, true
}

func (s *Service) setCachedQuizStats(stats []QuizStats) {
	s.quizStats.Store(&stats)
}

func (s *Service) invalidateQuizStats() {
	s.quizStats.Store(nil)
}
