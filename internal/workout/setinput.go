package workout

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"villamitre/internal/api"
)

// Validation errors shown directly to the member
var (
	ErrInvalidReps   = errors.New("las repeticiones deben ser un número entero mayor a cero")
	ErrInvalidWeight = errors.New("el peso debe ser un número mayor o igual a cero")
	ErrInvalidRPE    = errors.New("el RPE debe ser un número entero entre 1 y 10")
)

var leadingInt = regexp.MustCompile(`^\s*(\d+)`)

// ParseSetInput validates and normalizes the raw text the member typed
// for one set. Reps is required; weight, RPE and notes are optional.
// Decimal commas are accepted for weight ("62,5").
func ParseSetInput(reps, weight, rpe, notes string) (SetPatch, error) {
	var patch SetPatch

	r, err := strconv.Atoi(strings.TrimSpace(reps))
	if err != nil || r <= 0 {
		return SetPatch{}, ErrInvalidReps
	}
	patch.Reps = &r

	if w := strings.TrimSpace(weight); w != "" {
		parsed, err := strconv.ParseFloat(strings.Replace(w, ",", ".", 1), 64)
		if err != nil || parsed < 0 {
			return SetPatch{}, ErrInvalidWeight
		}
		patch.Weight = &parsed
	}

	if e := strings.TrimSpace(rpe); e != "" {
		parsed, err := strconv.Atoi(e)
		if err != nil || parsed < 1 || parsed > 10 {
			return SetPatch{}, ErrInvalidRPE
		}
		patch.RPE = &parsed
	}

	patch.Notes = strings.TrimSpace(notes)

	return patch, nil
}

// SuggestedReps proposes a rep count for an untouched set: the plan's
// lower bound if a range exists, else a leading integer parsed out of
// free-text reps ("8-12" suggests 8). Zero means no suggestion.
func SuggestedReps(planned *api.PlannedSet) int {
	if planned == nil {
		return 0
	}
	if planned.RepsMin != nil {
		return *planned.RepsMin
	}
	if m := leadingInt.FindStringSubmatch(planned.Reps); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}
	return 0
}

// Prefill returns the form's initial field values for a set: a prior
// recording wins, otherwise the plan's suggestion.
func Prefill(prior *SetProgress, planned *api.PlannedSet) (reps, weight, rpe, notes string) {
	if prior != nil && prior.Completed {
		if prior.Reps != nil {
			reps = strconv.Itoa(*prior.Reps)
		}
		if prior.Weight != nil {
			weight = strconv.FormatFloat(*prior.Weight, 'f', -1, 64)
		}
		if prior.RPE != nil {
			rpe = strconv.Itoa(*prior.RPE)
		}
		notes = prior.Notes
		return reps, weight, rpe, notes
	}

	if n := SuggestedReps(planned); n > 0 {
		reps = strconv.Itoa(n)
	}
	if planned != nil {
		if w := planned.TargetWeight(); w != nil {
			weight = strconv.FormatFloat(*w, 'f', -1, 64)
		}
	}
	return reps, weight, rpe, notes
}
