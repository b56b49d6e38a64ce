package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"villamitre/internal/api"
	"villamitre/internal/store"
)

// DefaultDraftKey is where the app persists its active workout draft.
// The key is a parameter of the engine so tests can use their own.
const DefaultDraftKey = "active_workout"

// ErrSessionActive is returned when starting a workout while one is in progress
var ErrSessionActive = errors.New("a workout session is already active")

// ErrNoSession is returned by operations that need an active session
var ErrNoSession = errors.New("no active workout session")

// ErrBusy is returned when a start or finish is already in flight
var ErrBusy = errors.New("operation already in progress")

// Gateway is the remote contract the engine needs: fetch a plan, submit a
// result. *api.Client satisfies it.
type Gateway interface {
	GetWorkoutTemplate(ctx context.Context, templateID int64) (*api.WorkoutTemplate, error)
	SubmitSession(ctx context.Context, sessionID string, req api.SessionSubmission) (*api.SessionResult, error)
}

// SetPatch is the validated result of capturing one set's input
type SetPatch struct {
	Reps   *int
	Weight *float64
	RPE    *int
	Notes  string
}

// Engine owns the active workout session. It is the only writer of State;
// every mutation is mirrored to the draft store through a serialized
// background writer, so a crash or restart resumes where the member
// left off.
type Engine struct {
	gateway Gateway
	writer  *draftWriter
	logf    func(format string, v ...any)
	now     func() time.Time

	mu        sync.Mutex
	state     *State
	starting  bool
	finishing bool
}

// NewEngine creates an engine bound to a draft key and restores any
// persisted session. A corrupt draft is logged and discarded rather than
// failing startup.
func NewEngine(gateway Gateway, drafts DraftStore, draftKey string) *Engine {
	e := &Engine{
		gateway: gateway,
		logf:    log.Printf,
		now:     time.Now,
	}
	e.writer = newDraftWriter(drafts, draftKey, func(format string, v ...any) {
		e.logf(format, v...)
	})
	e.restore(drafts, draftKey)
	return e
}

// Close flushes pending draft writes and stops the background writer
func (e *Engine) Close() {
	e.writer.close()
}

// Flush blocks until all queued draft writes have hit the store
func (e *Engine) Flush() {
	e.writer.flush()
}

func (e *Engine) restore(drafts DraftStore, draftKey string) {
	raw, err := drafts.GetDraft(draftKey)
	if errors.Is(err, store.ErrNoDraft) {
		return
	}
	if err != nil {
		e.logf("workout: loading draft: %v", err)
		return
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		e.logf("workout: discarding corrupt draft: %v", err)
		return
	}
	e.state = &state
}

// State returns a snapshot of the active session, or nil
func (e *Engine) State() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Active reports whether a session is in progress
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil
}

// Start fetches the template and opens a new session positioned at the
// first set of the first exercise. The session gets its own generated id;
// the template id is only the plan reference. Starting while a session
// exists (or while another start is in flight) is refused.
func (e *Engine) Start(ctx context.Context, templateID int64, templateTitle string) error {
	e.mu.Lock()
	if e.state != nil {
		e.mu.Unlock()
		return ErrSessionActive
	}
	if e.starting {
		e.mu.Unlock()
		return ErrBusy
	}
	e.starting = true
	e.mu.Unlock()

	template, err := e.gateway.GetWorkoutTemplate(ctx, templateID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.starting {
		// Cancelled while the fetch was in flight; discard the result
		return ErrNoSession
	}
	e.starting = false

	if err != nil {
		return fmt.Errorf("fetching workout template: %w", err)
	}

	title := templateTitle
	if title == "" {
		title = template.Title
	}

	progress := make([]ExerciseProgress, len(template.Exercises))
	for i, ex := range template.Exercises {
		sets := make([]SetProgress, len(ex.Sets))
		for j := range ex.Sets {
			sets[j] = SetProgress{SetIndex: j}
		}
		progress[i] = ExerciseProgress{
			ExerciseID:    ex.ID,
			ExerciseOrder: ex.Order,
			Sets:          sets,
		}
	}

	e.state = &State{
		SessionID:     uuid.NewString(),
		TemplateID:    templateID,
		TemplateTitle: title,
		Exercises:     template.Exercises,
		Progress:      progress,
		StartedAt:     e.now().UnixMilli(),
	}
	e.persistLocked()
	return nil
}

// CompleteSet merges the captured input into one set and marks it done.
// When the last open set of an exercise completes, the exercise is marked
// complete and stamped. The cursor is not advanced here; that stays a
// separate step so the rest period can run in between.
func (e *Engine) CompleteSet(exerciseIndex, setIndex int, patch SetPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return ErrNoSession
	}
	if exerciseIndex < 0 || exerciseIndex >= len(e.state.Progress) {
		return fmt.Errorf("exercise index %d out of range", exerciseIndex)
	}
	exercise := &e.state.Progress[exerciseIndex]
	if setIndex < 0 || setIndex >= len(exercise.Sets) {
		return fmt.Errorf("set index %d out of range", setIndex)
	}

	now := e.now().UnixMilli()
	if exercise.StartedAt == 0 {
		exercise.StartedAt = now
	}

	set := &exercise.Sets[setIndex]
	if patch.Reps != nil {
		set.Reps = patch.Reps
	}
	if patch.Weight != nil {
		set.Weight = patch.Weight
	}
	if patch.RPE != nil {
		set.RPE = patch.RPE
	}
	if patch.Notes != "" {
		set.Notes = patch.Notes
	}
	set.Completed = true

	allDone := true
	for _, s := range exercise.Sets {
		if !s.Completed {
			allDone = false
			break
		}
	}
	if allDone && !exercise.Completed {
		exercise.Completed = true
		exercise.EndedAt = now
	}

	e.persistLocked()
	return nil
}

// StartRest opens a rest window ending restSeconds from now and stamps
// the set under the cursor
func (e *Engine) StartRest(restSeconds int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return ErrNoSession
	}

	now := e.now()
	e.state.Resting = true
	e.state.RestEndsAt = now.Add(time.Duration(restSeconds) * time.Second).UnixMilli()
	if set := e.state.CurrentSetProgress(); set != nil {
		set.RestStartedAt = now.UnixMilli()
	}

	e.persistLocked()
	return nil
}

// EndRest closes the rest window (completed or skipped, the engine does
// not distinguish)
func (e *Engine) EndRest() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return ErrNoSession
	}

	e.state.Resting = false
	e.state.RestEndsAt = 0

	e.persistLocked()
	return nil
}

// MoveToNext advances the cursor: next set, else next exercise, else the
// session is complete. It is pure traversal and does not check that the
// current set was recorded; callers drive it after CompleteSet.
func (e *Engine) MoveToNext() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return ErrNoSession
	}
	if e.state.Completed {
		// Terminal: the cursor no longer moves
		return nil
	}

	s := e.state
	switch {
	case s.CurrentSet+1 < len(s.Exercises[s.CurrentEx].Sets):
		s.CurrentSet++
	case s.CurrentEx+1 < len(s.Exercises):
		s.CurrentEx++
		s.CurrentSet = 0
	default:
		s.Completed = true
	}

	e.persistLocked()
	return nil
}

// Finish submits the session to the backend. On success the draft is
// removed and the in-memory state cleared. On failure both are left
// intact so the member can retry without losing anything.
func (e *Engine) Finish(ctx context.Context) (*api.SessionResult, error) {
	e.mu.Lock()
	if e.state == nil {
		e.mu.Unlock()
		return nil, ErrNoSession
	}
	if e.finishing {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	e.finishing = true

	now := e.now()
	e.state.TotalDuration = int((now.UnixMilli() - e.state.StartedAt) / 1000)
	sessionID := e.state.SessionID
	submission := buildSubmission(e.state, now)
	e.mu.Unlock()

	result, err := e.gateway.SubmitSession(ctx, sessionID, submission)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishing = false

	if err != nil {
		return nil, fmt.Errorf("submitting session: %w", err)
	}
	if e.state != nil && e.state.SessionID == sessionID {
		e.state = nil
		e.writer.remove()
	}
	return result, nil
}

// Cancel abandons the session: in-memory state cleared, draft removed,
// nothing submitted. Effective even while a start fetch is in flight.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.starting = false
	if e.state == nil {
		return
	}
	e.state = nil
	e.writer.remove()
}

// Stats returns derived progress statistics, or nil without a session
func (e *Engine) Stats() *Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeStats(e.state, e.now())
}

// persistLocked queues a snapshot write; callers hold e.mu
func (e *Engine) persistLocked() {
	data, err := json.Marshal(e.state)
	if err != nil {
		e.logf("workout: encoding draft: %v", err)
		return
	}
	e.writer.save(string(data))
}

// buildSubmission converts recorded progress into the backend's payload.
// Set numbers are 1-based; never-recorded reps go out as zero.
func buildSubmission(s *State, now time.Time) api.SessionSubmission {
	results := make([]api.ExerciseResult, len(s.Progress))
	for i, ex := range s.Progress {
		sets := make([]api.SetResult, len(ex.Sets))
		for j, set := range ex.Sets {
			reps := 0
			if set.Reps != nil {
				reps = *set.Reps
			}
			var notes *string
			if set.Notes != "" {
				n := set.Notes
				notes = &n
			}
			sets[j] = api.SetResult{
				SetNumber:     j + 1,
				RepsCompleted: reps,
				Weight:        set.Weight,
				RPEActual:     set.RPE,
				Notes:         notes,
			}
		}
		results[i] = api.ExerciseResult{ExerciseID: ex.ExerciseID, Sets: sets}
	}

	return api.SessionSubmission{
		ExerciseProgress: results,
		CompletedAt:      now.UTC().Format(time.RFC3339),
	}
}
