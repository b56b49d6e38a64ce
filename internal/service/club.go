package service

import (
	"context"
	"encoding/json"
	"log"

	"villamitre/internal/api"
	"villamitre/internal/store"
)

// Cache keys for the last-seen backend payloads
const (
	cacheKeyCard       = "membership_card"
	cacheKeyActivities = "activities"
	cacheKeyBenefits   = "benefits"
	cacheKeyPoints     = "points"
	cacheKeySchedule   = "weekly_schedule"
)

// ClubService fronts the club API with a read-through cache: successful
// responses are stored, and when the backend is unreachable the last-seen
// payload is served instead so the card and benefits still display at the
// club's front desk.
type ClubService struct {
	client *api.Client
	store  *store.Store
}

// NewClubService creates the service over the API client and local store
func NewClubService(client *api.Client, st *store.Store) *ClubService {
	return &ClubService{client: client, store: st}
}

// MembershipCard returns the member's card. The bool reports whether the
// value came from the local cache rather than the backend.
func (s *ClubService) MembershipCard(ctx context.Context) (*api.MembershipCard, bool, error) {
	return fetchWithCache(s, ctx, cacheKeyCard, s.client.GetMembershipCard)
}

// Activities returns the club's activity listing
func (s *ClubService) Activities(ctx context.Context) ([]api.ClubActivity, bool, error) {
	return fetchWithCache(s, ctx, cacheKeyActivities, s.client.GetActivities)
}

// Benefits returns the benefits available to the member
func (s *ClubService) Benefits(ctx context.Context) ([]api.Benefit, bool, error) {
	return fetchWithCache(s, ctx, cacheKeyBenefits, s.client.GetBenefits)
}

// Points returns the loyalty balance and history
func (s *ClubService) Points(ctx context.Context) (*api.PointsSummary, bool, error) {
	return fetchWithCache(s, ctx, cacheKeyPoints, s.client.GetPoints)
}

// WeeklySchedule returns the member's assigned gym week
func (s *ClubService) WeeklySchedule(ctx context.Context) ([]api.ScheduleDay, bool, error) {
	return fetchWithCache(s, ctx, cacheKeySchedule, s.client.GetWeeklySchedule)
}

// RedeemBenefit redeems a benefit. Redemptions are never served from
// cache: the code is one-time and must come from the backend.
func (s *ClubService) RedeemBenefit(ctx context.Context, benefitID int64) (*api.Redemption, error) {
	return s.client.RedeemBenefit(ctx, benefitID)
}

// fetchWithCache tries the backend first, mirroring successes into the
// cache; on failure it falls back to the last cached payload. Cache I/O
// failures are logged and ignored.
func fetchWithCache[T any](s *ClubService, ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, bool, error) {
	value, err := fetch(ctx)
	if err == nil {
		if data, merr := json.Marshal(value); merr == nil {
			if cerr := s.store.PutCache(key, string(data)); cerr != nil {
				log.Printf("service: caching %s: %v", key, cerr)
			}
		}
		return value, false, nil
	}

	raw, _, cerr := s.store.GetCache(key)
	if cerr != nil {
		var zero T
		return zero, false, err
	}

	var cached T
	if uerr := json.Unmarshal([]byte(raw), &cached); uerr != nil {
		log.Printf("service: discarding corrupt cache for %s: %v", key, uerr)
		var zero T
		return zero, false, err
	}
	return cached, true, nil
}
