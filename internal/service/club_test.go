package service

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"

	"villamitre/internal/api"
	"villamitre/internal/store"
)

func newTestService(t *testing.T, handler http.Handler) (*ClubService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	st, err := store.NewTestStore(sqlDB)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	return NewClubService(api.NewClient(server.URL, nil), st), server
}

func TestMembershipCardCacheFallback(t *testing.T) {
	var failing atomic.Bool

	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"member_number": "12345", "full_name": "Juana Pérez", "category": "Activo", "status": "al_dia"}`))
	}))

	ctx := context.Background()

	// First fetch hits the backend and populates the cache
	card, cached, err := svc.MembershipCard(ctx)
	if err != nil {
		t.Fatalf("MembershipCard: %v", err)
	}
	if cached {
		t.Error("first fetch should not be cached")
	}
	if card.MemberNumber != "12345" {
		t.Errorf("MemberNumber = %q", card.MemberNumber)
	}

	// Backend goes down: the cached card is served
	failing.Store(true)
	card, cached, err = svc.MembershipCard(ctx)
	if err != nil {
		t.Fatalf("MembershipCard with backend down: %v", err)
	}
	if !cached {
		t.Error("fallback response should be flagged as cached")
	}
	if card.FullName != "Juana Pérez" {
		t.Errorf("cached FullName = %q", card.FullName)
	}
}

func TestFetchErrorWithoutCache(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))

	if _, _, err := svc.Benefits(context.Background()); err == nil {
		t.Fatal("want error when the backend is down and nothing is cached")
	}
}

func TestRedeemBenefitNeverCached(t *testing.T) {
	var calls atomic.Int32

	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/benefits/5/redeem" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "VM-9F3K", "benefit_id": 5, "expires_at": "2026-03-01T20:00:00Z"}`))
	}))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		redemption, err := svc.RedeemBenefit(ctx, 5)
		if err != nil {
			t.Fatalf("RedeemBenefit: %v", err)
		}
		if redemption.Code != "VM-9F3K" {
			t.Errorf("Code = %q", redemption.Code)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("backend calls = %d, want 2 (no caching of redemptions)", calls.Load())
	}
}
