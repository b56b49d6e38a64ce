package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// Client is a typed HTTP client for the club backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a club API client that authenticates every request
// through the given token source
func NewClient(baseURL string, tokenSource oauth2.TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(context.Background(), tokenSource),
	}
}

// GetMembershipCard fetches the member's digital card
func (c *Client) GetMembershipCard(ctx context.Context) (*MembershipCard, error) {
	var card MembershipCard
	if err := c.get(ctx, "/members/me/card", nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// GetActivities fetches the club's activity listing
func (c *Client) GetActivities(ctx context.Context) ([]ClubActivity, error) {
	var activities []ClubActivity
	if err := c.get(ctx, "/activities", nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetBenefits fetches the benefits available to the member
func (c *Client) GetBenefits(ctx context.Context) ([]Benefit, error) {
	var benefits []Benefit
	if err := c.get(ctx, "/benefits", nil, &benefits); err != nil {
		return nil, err
	}
	return benefits, nil
}

// RedeemBenefit redeems a benefit and returns the one-time code
func (c *Client) RedeemBenefit(ctx context.Context, benefitID int64) (*Redemption, error) {
	var redemption Redemption
	path := fmt.Sprintf("/benefits/%d/redeem", benefitID)
	if err := c.post(ctx, path, struct{}{}, &redemption); err != nil {
		return nil, err
	}
	return &redemption, nil
}

// GetPoints fetches the member's loyalty balance and history
func (c *Client) GetPoints(ctx context.Context) (*PointsSummary, error) {
	var points PointsSummary
	if err := c.get(ctx, "/members/me/points", nil, &points); err != nil {
		return nil, err
	}
	return &points, nil
}

// GetWeeklySchedule fetches the member's assigned gym week
func (c *Client) GetWeeklySchedule(ctx context.Context) ([]ScheduleDay, error) {
	var days []ScheduleDay
	if err := c.get(ctx, "/gym/weekly-schedule", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// GetWorkoutTemplate fetches a full workout template by id.
// A missing template or any non-2xx response is returned as an error.
func (c *Client) GetWorkoutTemplate(ctx context.Context, templateID int64) (*WorkoutTemplate, error) {
	var template WorkoutTemplate
	path := fmt.Sprintf("/gym/templates/%d", templateID)
	if err := c.get(ctx, path, nil, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// SubmitSession submits a completed workout session.
// The backend rejects the whole submission or accepts it; there is no
// partial success, so callers keep their local state on error and retry.
func (c *Client) SubmitSession(ctx context.Context, sessionID string, req SessionSubmission) (*SessionResult, error) {
	var result SessionResult
	path := fmt.Sprintf("/gym/sessions/%s/complete", url.PathEscape(sessionID))
	if err := c.post(ctx, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
