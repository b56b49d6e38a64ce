package workout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"villamitre/internal/api"
	"villamitre/internal/store"
)

type submitted struct {
	sessionID string
	req       api.SessionSubmission
}

type fakeGateway struct {
	mu        sync.Mutex
	template  *api.WorkoutTemplate
	fetchErr  error
	submitErr error
	result    *api.SessionResult
	submitted []submitted
	fetchGate chan struct{} // when set, fetch blocks until the channel closes
}

func (g *fakeGateway) GetWorkoutTemplate(ctx context.Context, templateID int64) (*api.WorkoutTemplate, error) {
	g.mu.Lock()
	gate := g.fetchGate
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.template, nil
}

func (g *fakeGateway) SubmitSession(ctx context.Context, sessionID string, req api.SessionSubmission) (*api.SessionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	g.submitted = append(g.submitted, submitted{sessionID: sessionID, req: req})
	if g.result != nil {
		return g.result, nil
	}
	return &api.SessionResult{SessionID: sessionID}, nil
}

type fakeDrafts struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{m: make(map[string]string)}
}

func (d *fakeDrafts) GetDraft(key string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m[key]
	if !ok {
		return "", store.ErrNoDraft
	}
	return v, nil
}

func (d *fakeDrafts) PutDraft(key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[key] = value
	return nil
}

func (d *fakeDrafts) DeleteDraft(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, key)
	return nil
}

func (d *fakeDrafts) get(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m[key]
	return v, ok
}

// testTemplate has 2 exercises with 2 planned sets each
func testTemplate() *api.WorkoutTemplate {
	min8, max12 := 8, 12
	w60 := 60.0
	return &api.WorkoutTemplate{
		ID:    42,
		Title: "Fuerza - Día 1",
		Exercises: []api.TemplateExercise{
			{
				ID: 7, Name: "Sentadilla", Order: 1,
				Sets: []api.PlannedSet{
					{SetNumber: 1, RepsMin: &min8, RepsMax: &max12, WeightTarget: &w60, RestSeconds: 120},
					{SetNumber: 2, RepsMin: &min8, RepsMax: &max12, RestSeconds: 120},
				},
			},
			{
				ID: 8, Name: "Peso muerto", Order: 2,
				Sets: []api.PlannedSet{
					{SetNumber: 1, Reps: "10", RestSeconds: 90},
					{SetNumber: 2, Reps: "10", RestSeconds: 90},
				},
			},
		},
	}
}

func newTestEngine(t *testing.T, gw *fakeGateway, drafts *fakeDrafts) *Engine {
	t.Helper()
	e := NewEngine(gw, drafts, "test_workout")
	e.logf = t.Logf
	t.Cleanup(e.Close)
	return e
}

func mustStart(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Start(context.Background(), 42, "Fuerza - Día 1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestStartBuildsInitialState(t *testing.T) {
	gw := &fakeGateway{template: testTemplate()}
	e := newTestEngine(t, gw, newFakeDrafts())

	mustStart(t, e)

	s := e.State()
	if s == nil {
		t.Fatal("State() = nil after Start")
	}
	if s.SessionID == "" {
		t.Error("SessionID not generated")
	}
	if s.SessionID == "42" {
		t.Error("SessionID must not alias the template id")
	}
	if s.TemplateID != 42 || s.TemplateTitle != "Fuerza - Día 1" {
		t.Errorf("template ref = %d %q", s.TemplateID, s.TemplateTitle)
	}
	if s.CurrentEx != 0 || s.CurrentSet != 0 {
		t.Errorf("cursor = (%d, %d), want (0, 0)", s.CurrentEx, s.CurrentSet)
	}
	if s.Resting || s.Completed {
		t.Errorf("Resting = %v, Completed = %v, want false/false", s.Resting, s.Completed)
	}
	if s.StartedAt == 0 {
		t.Error("StartedAt not stamped")
	}
	if len(s.Progress) != 2 {
		t.Fatalf("progress = %d exercises, want 2", len(s.Progress))
	}
	for i, ex := range s.Progress {
		if len(ex.Sets) != 2 {
			t.Errorf("progress[%d] = %d sets, want 2", i, len(ex.Sets))
		}
		for j, set := range ex.Sets {
			if set.SetIndex != j {
				t.Errorf("progress[%d].Sets[%d].SetIndex = %d", i, j, set.SetIndex)
			}
			if set.Completed || set.Reps != nil {
				t.Errorf("progress[%d].Sets[%d] not blank: %+v", i, j, set)
			}
		}
	}
}

func TestStartWhileActive(t *testing.T) {
	gw := &fakeGateway{template: testTemplate()}
	e := newTestEngine(t, gw, newFakeDrafts())

	mustStart(t, e)
	if err := e.Start(context.Background(), 43, "Otro"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Start = %v, want ErrSessionActive", err)
	}
}

func TestStartFetchFailure(t *testing.T) {
	gw := &fakeGateway{fetchErr: errors.New("connection refused")}
	e := newTestEngine(t, gw, newFakeDrafts())

	err := e.Start(context.Background(), 42, "")
	if err == nil {
		t.Fatal("Start with failing fetch: want error")
	}
	if e.State() != nil {
		t.Error("state should stay nil after a failed fetch")
	}

	// Retry with the network back
	gw.fetchErr = nil
	gw.template = testTemplate()
	mustStart(t, e)
	if e.State() == nil {
		t.Error("retry after fetch failure should succeed")
	}
}

func TestFullSessionScenario(t *testing.T) {
	gw := &fakeGateway{template: testTemplate()}
	drafts := newFakeDrafts()
	e := newTestEngine(t, gw, drafts)

	mustStart(t, e)

	// Set 1/2 of exercise 1: exercise stays open
	if err := e.CompleteSet(0, 0, SetPatch{Reps: intPtr(10), Weight: floatPtr(20)}); err != nil {
		t.Fatalf("CompleteSet(0,0): %v", err)
	}
	s := e.State()
	if s.Progress[0].Completed {
		t.Error("exercise 0 marked complete with one set remaining")
	}
	if !s.Progress[0].Sets[0].Completed {
		t.Error("set (0,0) not marked complete")
	}
	if got := s.Progress[0].Sets[0].Reps; got == nil || *got != 10 {
		t.Errorf("set (0,0).Reps = %v, want 10", got)
	}

	if err := e.MoveToNext(); err != nil {
		t.Fatalf("MoveToNext: %v", err)
	}

	// Set 2/2: exercise 1 completes and is stamped
	if err := e.CompleteSet(0, 1, SetPatch{Reps: intPtr(8)}); err != nil {
		t.Fatalf("CompleteSet(0,1): %v", err)
	}
	s = e.State()
	if !s.Progress[0].Completed {
		t.Error("exercise 0 should be complete after both sets")
	}
	if s.Progress[0].EndedAt == 0 {
		t.Error("exercise 0 EndedAt not stamped")
	}

	// Advance to exercise 2
	if err := e.MoveToNext(); err != nil {
		t.Fatalf("MoveToNext: %v", err)
	}
	s = e.State()
	if s.CurrentEx != 1 || s.CurrentSet != 0 {
		t.Fatalf("cursor = (%d, %d), want (1, 0)", s.CurrentEx, s.CurrentSet)
	}

	// Complete both sets of exercise 2
	if err := e.CompleteSet(1, 0, SetPatch{Reps: intPtr(10)}); err != nil {
		t.Fatalf("CompleteSet(1,0): %v", err)
	}
	if err := e.MoveToNext(); err != nil {
		t.Fatalf("MoveToNext: %v", err)
	}
	if err := e.CompleteSet(1, 1, SetPatch{Reps: intPtr(10)}); err != nil {
		t.Fatalf("CompleteSet(1,1): %v", err)
	}

	// Final advance is terminal
	if err := e.MoveToNext(); err != nil {
		t.Fatalf("final MoveToNext: %v", err)
	}
	s = e.State()
	if !s.Completed {
		t.Fatal("session not marked complete after last set")
	}

	// Terminal: the cursor stops moving
	before := [2]int{s.CurrentEx, s.CurrentSet}
	if err := e.MoveToNext(); err != nil {
		t.Fatalf("MoveToNext after completion: %v", err)
	}
	s = e.State()
	if [2]int{s.CurrentEx, s.CurrentSet} != before {
		t.Error("cursor moved after completion")
	}

	stats := e.Stats()
	if stats.CompletedSets != 4 || stats.TotalSets != 4 {
		t.Errorf("sets = %d/%d, want 4/4", stats.CompletedSets, stats.TotalSets)
	}
	if stats.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %d, want 100", stats.ProgressPercent)
	}
}

func TestRestWindow(t *testing.T) {
	gw := &fakeGateway{template: testTemplate()}
	e := newTestEngine(t, gw, newFakeDrafts())

	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	mustStart(t, e)
	if err := e.CompleteSet(0, 0, SetPatch{Reps: intPtr(10)}); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if err := e.StartRest(120); err != nil {
		t.Fatalf("StartRest: %v", err)
	}

	s := e.State()
	if !s.Resting {
		t.Fatal("Resting = false after StartRest")
	}
	wantEnd := now.Add(120 * time.Second).UnixMilli()
	if s.RestEndsAt != wantEnd {
		t.Errorf("RestEndsAt = %d, want %d", s.RestEndsAt, wantEnd)
	}
	if s.Progress[0].Sets[0].RestStartedAt != now.UnixMilli() {
		t.Errorf("RestStartedAt = %d, want %d", s.Progress[0].Sets[0].RestStartedAt, now.UnixMilli())
	}

	if err := e.EndRest(); err != nil {
		t.Fatalf("EndRest: %v", err)
	}
	s = e.State()
	if s.Resting || s.RestEndsAt != 0 {
		t.Errorf("after EndRest: Resting = %v, RestEndsAt = %d", s.Resting, s.RestEndsAt)
	}
}

func TestCancelClearsStateAndDraft(t *testing.T) {
	gw := &fakeGateway{template: testTemplate()}
	drafts := newFakeDrafts()
	e := newTestEngine(t, gw, drafts)

	mustStart(t, e)
	if err := e.CompleteSet(0, 0, SetPatch{Reps: intPtr(10)}); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	e.Flush()
	if _, ok := drafts.get("test_workout"); !ok {
		t.Fatal("draft not persisted after mutation")
	}

	e.Cancel()
	e.Flush()

	if e.State() != nil {
		t.Error("state not nil after Cancel")
	}
	if _, ok := drafts.get("test_workout"); ok {
		t.Error("draft not removed after Cancel")
	}
	if len(gw.submitted) != 0 {
		t.Error("Cancel must not submit")
	}
}

func TestCancelDuringStartFetch(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{template: testTemplate(), fetchGate: gate}
	e := newTestEngine(t, gw, newFakeDrafts())

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(context.Background(), 42, "")
	}()

	// Let Start reach the fetch, then abandon
	time.Sleep(10 * time.Millisecond)
	e.Cancel()
	close(gate)

	if err := <-errCh; !errors.Is(err, ErrNoSession) {
		t.Fatalf("Start after mid-flight Cancel = %v, want ErrNoSession", err)
	}
	if e.State() != nil {
		t.Error("fetch result must be discarded after Cancel")
	}
}

func TestFinishSubmissionPayload(t *testing.T) {
	gw := &fakeGateway{template: testTemplate(), result: &api.SessionResult{SessionID: "srv", PointsAwarded: 25}}
	drafts := newFakeDrafts()
	e := newTestEngine(t, gw, drafts)

	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	now := start
	e.now = func() time.Time { return now }

	mustStart(t, e)
	sessionID := e.State().SessionID

	if err := e.CompleteSet(0, 0, SetPatch{Reps: intPtr(10), Weight: floatPtr(60), RPE: intPtr(8), Notes: "pesado"}); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}

	now = start.Add(40 * time.Minute)
	result, err := e.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if result.PointsAwarded != 25 {
		t.Errorf("PointsAwarded = %d, want 25", result.PointsAwarded)
	}
	if e.State() != nil {
		t.Error("state not cleared after successful Finish")
	}
	e.Flush()
	if _, ok := drafts.get("test_workout"); ok {
		t.Error("draft not removed after successful Finish")
	}

	if len(gw.submitted) != 1 {
		t.Fatalf("submissions = %d, want 1", len(gw.submitted))
	}
	sub := gw.submitted[0]
	if sub.sessionID != sessionID {
		t.Errorf("submitted under %q, want the generated session id %q", sub.sessionID, sessionID)
	}
	if sub.req.CompletedAt != "2026-03-01T18:40:00Z" {
		t.Errorf("CompletedAt = %q", sub.req.CompletedAt)
	}
	if len(sub.req.ExerciseProgress) != 2 {
		t.Fatalf("exercise_progress = %d, want 2", len(sub.req.ExerciseProgress))
	}

	first := sub.req.ExerciseProgress[0]
	if first.ExerciseID != 7 {
		t.Errorf("exercise_id = %d, want 7", first.ExerciseID)
	}
	if first.Sets[0].SetNumber != 1 || first.Sets[0].RepsCompleted != 10 {
		t.Errorf("sets[0] = %+v", first.Sets[0])
	}
	if first.Sets[0].Weight == nil || *first.Sets[0].Weight != 60 {
		t.Errorf("sets[0].Weight = %v, want 60", first.Sets[0].Weight)
	}
	if first.Sets[0].Notes == nil || *first.Sets[0].Notes != "pesado" {
		t.Errorf("sets[0].Notes = %v", first.Sets[0].Notes)
	}
	// Never-recorded set goes out with zero reps and null extras
	if first.Sets[1].SetNumber != 2 || first.Sets[1].RepsCompleted != 0 {
		t.Errorf("sets[1] = %+v", first.Sets[1])
	}
	if first.Sets[1].Weight != nil || first.Sets[1].RPEActual != nil || first.Sets[1].Notes != nil {
		t.Errorf("sets[1] extras should be null: %+v", first.Sets[1])
	}
}

func TestFinishFailureThenRetry(t *testing.T) {
	gw := &fakeGateway{template: testTemplate(), submitErr: errors.New("server rejected")}
	drafts := newFakeDrafts()
	e := newTestEngine(t, gw, drafts)

	mustStart(t, e)
	if err := e.CompleteSet(0, 0, SetPatch{Reps: intPtr(10)}); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	before := e.State()

	if _, err := e.Finish(context.Background()); err == nil {
		t.Fatal("Finish with rejecting gateway: want error")
	}

	after := e.State()
	if after == nil {
		t.Fatal("state lost after failed submission")
	}
	if after.SessionID != before.SessionID {
		t.Error("session identity changed after failed submission")
	}
	if got := after.Progress[0].Sets[0].Reps; got == nil || *got != 10 {
		t.Errorf("recorded progress lost: Reps = %v", got)
	}
	e.Flush()
	if _, ok := drafts.get("test_workout"); !ok {
		t.Error("draft removed despite failed submission")
	}

	// Backend recovers; retry succeeds and clears everything
	gw.submitErr = nil
	result, err := e.Finish(context.Background())
	if err != nil {
		t.Fatalf("retry Finish: %v", err)
	}
	if result == nil {
		t.Fatal("retry Finish returned nil result")
	}
	if e.State() != nil {
		t.Error("state not cleared after successful retry")
	}
}

func TestRestoreFromDraft(t *testing.T) {
	gw := &fakeGateway{template: testTemplate()}
	drafts := newFakeDrafts()

	first := newTestEngine(t, gw, drafts)
	mustStart(t, first)
	if err := first.CompleteSet(0, 0, SetPatch{Reps: intPtr(10), Weight: floatPtr(20)}); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	if err := first.MoveToNext(); err != nil {
		t.Fatalf("MoveToNext: %v", err)
	}
	first.Flush()
	want := first.State()
	first.Close()

	// Simulated restart: a fresh engine over the same store
	second := newTestEngine(t, gw, drafts)
	got := second.State()
	if got == nil {
		t.Fatal("restored state is nil")
	}

	wantJSON, _ := json.Marshal(want)
	gotJSON, _ := json.Marshal(got)
	if string(wantJSON) != string(gotJSON) {
		t.Errorf("restored state differs:\n got %s\nwant %s", gotJSON, wantJSON)
	}
}

func TestCorruptDraftIgnored(t *testing.T) {
	drafts := newFakeDrafts()
	drafts.m["test_workout"] = "{not json"

	e := newTestEngine(t, &fakeGateway{template: testTemplate()}, drafts)
	if e.State() != nil {
		t.Error("corrupt draft should restore to nil state")
	}
	// And a new session can still be started
	mustStart(t, e)
	if e.State() == nil {
		t.Error("Start after corrupt draft failed")
	}
}

func TestOperationsWithoutSession(t *testing.T) {
	e := newTestEngine(t, &fakeGateway{}, newFakeDrafts())

	if err := e.CompleteSet(0, 0, SetPatch{Reps: intPtr(10)}); !errors.Is(err, ErrNoSession) {
		t.Errorf("CompleteSet = %v, want ErrNoSession", err)
	}
	if err := e.StartRest(60); !errors.Is(err, ErrNoSession) {
		t.Errorf("StartRest = %v, want ErrNoSession", err)
	}
	if err := e.EndRest(); !errors.Is(err, ErrNoSession) {
		t.Errorf("EndRest = %v, want ErrNoSession", err)
	}
	if err := e.MoveToNext(); !errors.Is(err, ErrNoSession) {
		t.Errorf("MoveToNext = %v, want ErrNoSession", err)
	}
	if _, err := e.Finish(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("Finish = %v, want ErrNoSession", err)
	}
	if e.Stats() != nil {
		t.Error("Stats without session should be nil")
	}
	e.Cancel() // must not panic
}
