package api

import (
	"time"
)

// MembershipCard is the member's digital card
type MembershipCard struct {
	MemberNumber string `json:"member_number"`
	FullName     string `json:"full_name"`
	DNI          string `json:"dni"`
	Category     string `json:"category"` // e.g. "Activo", "Cadete", "Vitalicio"
	Status       string `json:"status"`   // "al_dia" or "en_deuda"
	ValidThru    string `json:"valid_thru"`
	Barcode      string `json:"barcode"`
}

// ClubActivity is one activity offered by the club
type ClubActivity struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Schedule   string `json:"schedule"`
	Location   string `json:"location"`
	Instructor string `json:"instructor"`
}

// Benefit is a discount or promotion redeemable by members
type Benefit struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Partner     string `json:"partner"`
	Discount    string `json:"discount"`
	ExpiresAt   string `json:"expires_at"`
}

// Redemption is the result of redeeming a benefit; the code is shown
// to the partner's staff (rendered as a QR in the mobile app).
type Redemption struct {
	Code      string    `json:"code"`
	BenefitID int64     `json:"benefit_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PointsSummary is the member's loyalty balance plus dated history
type PointsSummary struct {
	Balance int           `json:"balance"`
	History []PointsEntry `json:"history"`
}

// PointsEntry is one point movement
type PointsEntry struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Balance int    `json:"balance"`
	Reason  string `json:"reason"`
}

// ScheduleDay is one day of the member's weekly gym schedule
type ScheduleDay struct {
	Day       string            `json:"day"` // "monday" .. "sunday"
	Templates []TemplateSummary `json:"templates"`
}

// TemplateSummary identifies a workout template on the schedule
type TemplateSummary struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	ExerciseCount    int    `json:"exercise_count"`
}

// WorkoutTemplate is a full workout plan fetched by id
type WorkoutTemplate struct {
	ID        int64              `json:"id"`
	Title     string             `json:"title"`
	Exercises []TemplateExercise `json:"exercises"`
}

// TemplateExercise is one exercise within a template, with its planned sets
type TemplateExercise struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Order int          `json:"order"`
	Video string       `json:"video_url,omitempty"`
	Sets  []PlannedSet `json:"sets"`
}

// PlannedSet is one prescribed set. Older templates carry a single legacy
// weight; newer ones carry target/min/max. Reps may be a literal, a
// min/max pair, or free text like "8-12".
type PlannedSet struct {
	SetNumber    int      `json:"set_number"`
	Reps         string   `json:"reps,omitempty"`
	RepsMin      *int     `json:"reps_min,omitempty"`
	RepsMax      *int     `json:"reps_max,omitempty"`
	Weight       *float64 `json:"weight,omitempty"` // legacy single value
	WeightTarget *float64 `json:"weight_target,omitempty"`
	WeightMin    *float64 `json:"weight_min,omitempty"`
	WeightMax    *float64 `json:"weight_max,omitempty"`
	RestSeconds  int      `json:"rest_seconds"`
	Tempo        string   `json:"tempo,omitempty"`
	RPETarget    *float64 `json:"rpe_target,omitempty"`
}

// TargetWeight resolves the weight to suggest for this set.
// Priority: explicit target, then range lower bound, then a single
// min/max bound, then the legacy weight field. Nil means bodyweight
// or "up to the member".
func (s *PlannedSet) TargetWeight() *float64 {
	switch {
	case s.WeightTarget != nil:
		return s.WeightTarget
	case s.WeightMin != nil:
		return s.WeightMin
	case s.WeightMax != nil:
		return s.WeightMax
	case s.Weight != nil:
		return s.Weight
	}
	return nil
}

// SessionSubmission is the payload sent when a workout session is finished
type SessionSubmission struct {
	ExerciseProgress []ExerciseResult `json:"exercise_progress"`
	StudentNotes     *string          `json:"student_notes"`
	CompletedAt      string           `json:"completed_at"` // RFC 3339
}

// ExerciseResult holds the completed sets for one exercise
type ExerciseResult struct {
	ExerciseID int64       `json:"exercise_id"`
	Sets       []SetResult `json:"sets"`
}

// SetResult is one completed (or skipped) set
type SetResult struct {
	SetNumber     int      `json:"set_number"` // 1-based
	RepsCompleted int      `json:"reps_completed"`
	Weight        *float64 `json:"weight"`
	RPEActual     *int     `json:"rpe_actual"`
	Notes         *string  `json:"notes"`
}

// SessionResult is the backend's acknowledgement of a submitted session
type SessionResult struct {
	SessionID     string `json:"session_id"`
	PointsAwarded int    `json:"points_awarded"`
}
