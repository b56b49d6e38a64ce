package workout

import (
	"math"
	"time"

	"villamitre/internal/api"
)

// SetProgress records one attempt at one planned set
type SetProgress struct {
	SetIndex      int      `json:"setIndex"` // 0-based, matches the planned set list
	Reps          *int     `json:"reps"`
	Weight        *float64 `json:"weight"`
	RPE           *int     `json:"rpe"`
	Completed     bool     `json:"completed"`
	RestStartedAt int64    `json:"restStartedAt,omitempty"` // epoch ms
	Notes         string   `json:"notes,omitempty"`
}

// ExerciseProgress aggregates all sets for one exercise in the session
type ExerciseProgress struct {
	ExerciseID    int64         `json:"exerciseId"`
	ExerciseOrder int           `json:"exerciseOrder"`
	Sets          []SetProgress `json:"sets"`
	Completed     bool          `json:"completed"`
	StartedAt     int64         `json:"startedAt,omitempty"` // epoch ms
	EndedAt       int64         `json:"endedAt,omitempty"`   // epoch ms, set once
}

// State is the root aggregate of an active workout session.
// At most one exists per device; the Engine owns and mutates it, the
// draft store only mirrors it. Timestamps are epoch milliseconds so the
// persisted JSON round-trips exactly.
type State struct {
	SessionID     string                 `json:"sessionId"`
	TemplateID    int64                  `json:"templateId"`
	TemplateTitle string                 `json:"templateTitle"`
	Exercises     []api.TemplateExercise `json:"exercises"` // immutable plan snapshot
	Progress      []ExerciseProgress     `json:"progress"`  // same length and order
	CurrentEx     int                    `json:"currentExerciseIndex"`
	CurrentSet    int                    `json:"currentSetIndex"`
	StartedAt     int64                  `json:"startTime"` // epoch ms
	Resting       bool                   `json:"isResting"`
	RestEndsAt    int64                  `json:"restEndTime,omitempty"` // epoch ms
	TotalDuration int                    `json:"totalDuration"`         // seconds
	Completed     bool                   `json:"isCompleted"`
}

// CurrentExercise returns the exercise under the cursor, or nil once the
// plan is exhausted
func (s *State) CurrentExercise() *api.TemplateExercise {
	if s.CurrentEx < 0 || s.CurrentEx >= len(s.Exercises) {
		return nil
	}
	return &s.Exercises[s.CurrentEx]
}

// CurrentPlannedSet returns the planned set under the cursor, or nil
func (s *State) CurrentPlannedSet() *api.PlannedSet {
	ex := s.CurrentExercise()
	if ex == nil || s.CurrentSet < 0 || s.CurrentSet >= len(ex.Sets) {
		return nil
	}
	return &ex.Sets[s.CurrentSet]
}

// CurrentSetProgress returns the recorded progress for the set under the
// cursor, or nil
func (s *State) CurrentSetProgress() *SetProgress {
	if s.CurrentEx < 0 || s.CurrentEx >= len(s.Progress) {
		return nil
	}
	sets := s.Progress[s.CurrentEx].Sets
	if s.CurrentSet < 0 || s.CurrentSet >= len(sets) {
		return nil
	}
	return &sets[s.CurrentSet]
}

// Clone returns a deep copy, so callers can render a snapshot while the
// engine keeps mutating its own state
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Exercises = make([]api.TemplateExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].Sets = append([]api.PlannedSet(nil), ex.Sets...)
	}
	out.Progress = make([]ExerciseProgress, len(s.Progress))
	for i, p := range s.Progress {
		out.Progress[i] = p
		out.Progress[i].Sets = append([]SetProgress(nil), p.Sets...)
	}
	return &out
}

// Stats is the derived view of session progress, recomputed on demand
type Stats struct {
	CompletedExercises int
	TotalExercises     int
	CompletedSets      int
	TotalSets          int
	ElapsedSeconds     int
	ProgressPercent    int // 0..100
}

// ComputeStats derives session statistics at the given instant
func ComputeStats(s *State, now time.Time) *Stats {
	if s == nil {
		return nil
	}

	stats := &Stats{TotalExercises: len(s.Progress)}
	for _, ex := range s.Progress {
		if ex.Completed {
			stats.CompletedExercises++
		}
		stats.TotalSets += len(ex.Sets)
		for _, set := range ex.Sets {
			if set.Completed {
				stats.CompletedSets++
			}
		}
	}

	elapsed := now.UnixMilli() - s.StartedAt
	if elapsed > 0 {
		stats.ElapsedSeconds = int(elapsed / 1000)
	}

	// An empty template would otherwise divide by zero
	if stats.TotalSets > 0 {
		stats.ProgressPercent = int(math.Round(100 * float64(stats.CompletedSets) / float64(stats.TotalSets)))
	}

	return stats
}
