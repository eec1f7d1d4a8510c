package scanner

import "time"

// SkipReason classifies why an entity on the board produced no analysis.
type SkipReason string

const (
	// SkipInsufficientHistory marks an entity with too few games played.
	SkipInsufficientHistory SkipReason = "insufficient_history"
	// SkipNotFound marks an entity the history source does not know.
	SkipNotFound SkipReason = "not_found"
	// SkipRetrievalError marks an entity whose history fetch failed.
	SkipRetrievalError SkipReason = "retrieval_error"
)

// RunStats accumulates counters over one scan.
type RunStats struct {
	EventsFound       int
	EventsFailed      int
	PlayersSeen       int
	TeamsSeen         int
	EntitiesAnalyzed  int
	EntitiesSkipped   int
	Skips             map[SkipReason]int
	PlayerPicks       int
	TeamPicks         int
	Duration          time.Duration
	RequestsRemaining int
}

func newRunStats() *RunStats {
	return &RunStats{
		Skips:             make(map[SkipReason]int),
		RequestsRemaining: -1,
	}
}

func (s *RunStats) recordSkip(reason SkipReason) {
	s.EntitiesSkipped++
	s.Skips[reason]++
}

// TotalPicks returns the combined player and team pick count.
func (s *RunStats) TotalPicks() int {
	return s.PlayerPicks + s.TeamPicks
}
