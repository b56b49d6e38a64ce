package workout

import (
	"errors"
	"testing"

	"villamitre/internal/api"
)

func TestParseSetInput(t *testing.T) {
	tests := []struct {
		name    string
		reps    string
		weight  string
		rpe     string
		notes   string
		wantErr error
		check   func(t *testing.T, p SetPatch)
	}{
		{
			name: "reps only",
			reps: "10",
			check: func(t *testing.T, p SetPatch) {
				if p.Reps == nil || *p.Reps != 10 {
					t.Errorf("Reps = %v, want 10", p.Reps)
				}
				if p.Weight != nil || p.RPE != nil || p.Notes != "" {
					t.Errorf("optional fields should be absent: %+v", p)
				}
			},
		},
		{
			name: "all fields",
			reps: "8", weight: "62.5", rpe: "9", notes: "  última con ayuda  ",
			check: func(t *testing.T, p SetPatch) {
				if *p.Reps != 8 || *p.Weight != 62.5 || *p.RPE != 9 {
					t.Errorf("parsed = %+v", p)
				}
				if p.Notes != "última con ayuda" {
					t.Errorf("Notes = %q, want trimmed", p.Notes)
				}
			},
		},
		{
			name: "decimal comma weight",
			reps: "8", weight: "62,5",
			check: func(t *testing.T, p SetPatch) {
				if p.Weight == nil || *p.Weight != 62.5 {
					t.Errorf("Weight = %v, want 62.5", p.Weight)
				}
			},
		},
		{
			name: "zero weight is bodyweight",
			reps: "12", weight: "0",
			check: func(t *testing.T, p SetPatch) {
				if p.Weight == nil || *p.Weight != 0 {
					t.Errorf("Weight = %v, want 0", p.Weight)
				}
			},
		},
		{
			name: "whitespace notes normalized to absent",
			reps: "10", notes: "   ",
			check: func(t *testing.T, p SetPatch) {
				if p.Notes != "" {
					t.Errorf("Notes = %q, want empty", p.Notes)
				}
			},
		},
		{name: "empty reps", reps: "", wantErr: ErrInvalidReps},
		{name: "zero reps", reps: "0", wantErr: ErrInvalidReps},
		{name: "negative reps", reps: "-3", wantErr: ErrInvalidReps},
		{name: "non-numeric reps", reps: "diez", wantErr: ErrInvalidReps},
		{name: "fractional reps", reps: "8.5", wantErr: ErrInvalidReps},
		{name: "negative weight", reps: "10", weight: "-5", wantErr: ErrInvalidWeight},
		{name: "non-numeric weight", reps: "10", weight: "mucho", wantErr: ErrInvalidWeight},
		{name: "rpe zero", reps: "10", rpe: "0", wantErr: ErrInvalidRPE},
		{name: "rpe eleven", reps: "10", rpe: "11", wantErr: ErrInvalidRPE},
		{name: "rpe fractional", reps: "10", rpe: "7.5", wantErr: ErrInvalidRPE},
		{name: "rpe bounds ok", reps: "10", rpe: "1"},
		{name: "rpe upper bound ok", reps: "10", rpe: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := ParseSetInput(tt.reps, tt.weight, tt.rpe, tt.notes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, patch)
			}
		})
	}
}

func TestSuggestedReps(t *testing.T) {
	min8 := 8

	tests := []struct {
		name    string
		planned *api.PlannedSet
		want    int
	}{
		{"range lower bound", &api.PlannedSet{RepsMin: &min8, Reps: "8-12"}, 8},
		{"leading int of free text", &api.PlannedSet{Reps: "8-12"}, 8},
		{"literal text", &api.PlannedSet{Reps: "15"}, 15},
		{"text with spaces", &api.PlannedSet{Reps: " 12 c/pierna"}, 12},
		{"no hint", &api.PlannedSet{Reps: "al fallo"}, 0},
		{"empty", &api.PlannedSet{}, 0},
		{"nil set", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestedReps(tt.planned); got != tt.want {
				t.Errorf("SuggestedReps = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrefill(t *testing.T) {
	min8 := 8
	w60 := 60.0
	planned := &api.PlannedSet{RepsMin: &min8, WeightTarget: &w60}

	t.Run("fresh set uses the plan", func(t *testing.T) {
		reps, weight, rpe, notes := Prefill(nil, planned)
		if reps != "8" || weight != "60" {
			t.Errorf("prefill = %q/%q, want 8/60", reps, weight)
		}
		if rpe != "" || notes != "" {
			t.Errorf("rpe/notes = %q/%q, want empty", rpe, notes)
		}
	})

	t.Run("reopened set wins over the plan", func(t *testing.T) {
		reps10, w62, rpe9 := 10, 62.5, 9
		prior := &SetProgress{
			Reps: &reps10, Weight: &w62, RPE: &rpe9,
			Notes: "con pausa", Completed: true,
		}
		reps, weight, rpe, notes := Prefill(prior, planned)
		if reps != "10" || weight != "62.5" || rpe != "9" || notes != "con pausa" {
			t.Errorf("prefill = %q/%q/%q/%q", reps, weight, rpe, notes)
		}
	})

	t.Run("uncompleted prior falls back to the plan", func(t *testing.T) {
		reps, weight, _, _ := Prefill(&SetProgress{}, planned)
		if reps != "8" || weight != "60" {
			t.Errorf("prefill = %q/%q, want 8/60", reps, weight)
		}
	})
}
