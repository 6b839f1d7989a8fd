package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func challengeIDForTest(t *testing.T, env *testEnv, token string, title string) uint {
	t.Helper()

	status, raw := env.do(t, http.MethodGet, "/api/challenges", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected challenges status 200, got %d: %s", status, raw)
	}
	payload := decodeJSON[struct {
		Challenges []struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
		} `json:"challenges"`
	}](t, raw)
	for _, challenge := range payload.Challenges {
		if challenge.Title == title {
			return challenge.ID
		}
	}
	t.Fatalf("challenge %q not in catalog", title)
	return 0
}

func TestChallengeJoinCheckInAndAbandon(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.onboardedUser(t, "mina@example.com")
	challengeID := challengeIDForTest(t, env, session.AccessToken, "Drink 2L of water")
	joinPath := fmt.Sprintf("/api/challenges/%d/join", challengeID)

	status, raw := env.do(t, http.MethodPost, joinPath, session.AccessToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected join status 201, got %d: %s", status, raw)
	}
	joined := decodeJSON[userChallengeView](t, raw)
	if joined.StartDate != "2025-03-10" || joined.EndDate != "2025-03-23" || joined.Status != "ACTIVE" {
		t.Fatalf("unexpected participation %+v", joined)
	}

	status, raw = env.do(t, http.MethodPost, joinPath, session.AccessToken, nil)
	if status != http.StatusConflict || readAPIError(t, raw) != "challenge already joined" {
		t.Fatalf("expected 409 on second join, got %d: %s", status, raw)
	}

	checkInPath := fmt.Sprintf("/api/user-challenges/%d/check-in", joined.ID)
	status, raw = env.do(t, http.MethodPost, checkInPath, session.AccessToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected check-in status 200, got %d: %s", status, raw)
	}
	checked := decodeJSON[userChallengeView](t, raw)
	if checked.Progress.CheckIns != 1 || checked.Progress.Points != 10 || checked.Progress.CurrentStreak != 1 || !checked.Progress.CheckedInToday {
		t.Fatalf("unexpected progress %+v", checked.Progress)
	}

	status, raw = env.do(t, http.MethodPost, checkInPath, session.AccessToken, nil)
	if status != http.StatusConflict || readAPIError(t, raw) != "already checked in today" {
		t.Fatalf("expected 409 on second check-in, got %d: %s", status, raw)
	}

	status, raw = env.do(t, http.MethodGet, "/api/user-challenges", session.AccessToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected list status 200, got %d: %s", status, raw)
	}
	listed := decodeJSON[struct {
		UserChallenges []userChallengeView `json:"user_challenges"`
	}](t, raw)
	if len(listed.UserChallenges) != 1 || listed.UserChallenges[0].Progress.CheckIns != 1 {
		t.Fatalf("unexpected user challenges %+v", listed.UserChallenges)
	}

	if status, raw := env.do(t, http.MethodDelete, fmt.Sprintf("/api/user-challenges/%d", joined.ID), session.AccessToken, nil); status != http.StatusOK {
		t.Fatalf("expected abandon status 200, got %d: %s", status, raw)
	}
	status, raw = env.do(t, http.MethodPost, checkInPath, session.AccessToken, nil)
	if status != http.StatusConflict || readAPIError(t, raw) != "challenge not active" {
		t.Fatalf("expected 409 checking into an abandoned challenge, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, joinPath, session.AccessToken, nil); status != http.StatusCreated {
		t.Fatalf("expected rejoin after abandon to succeed, got %d: %s", status, raw)
	}
}

func TestChallengeRoutesAreOwnerScoped(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.onboardedUser(t, "owner@example.com")
	other := env.onboardedUser(t, "other@example.com")
	challengeID := challengeIDForTest(t, env, owner.AccessToken, "Sunscreen every morning")

	status, raw := env.do(t, http.MethodPost, fmt.Sprintf("/api/challenges/%d/join", challengeID), owner.AccessToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected join status 201, got %d: %s", status, raw)
	}
	joined := decodeJSON[userChallengeView](t, raw)

	if status, raw := env.do(t, http.MethodPost, fmt.Sprintf("/api/user-challenges/%d/check-in", joined.ID), other.AccessToken, nil); status != http.StatusNotFound {
		t.Fatalf("expected foreign check-in to be 404, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodDelete, fmt.Sprintf("/api/user-challenges/%d", joined.ID), other.AccessToken, nil); status != http.StatusNotFound {
		t.Fatalf("expected foreign abandon to be 404, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, "/api/challenges/9999/join", owner.AccessToken, nil); status != http.StatusNotFound {
		t.Fatalf("expected unknown challenge to be 404, got %d: %s", status, raw)
	}
}

func TestDashboardAggregatesRecentProcedureAndChallenges(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.onboardedUser(t, "mina@example.com")
	scheduleForTest(t, env, session.AccessToken, scheduleProcedureRequest{
		ProcedureID: env.procedureID(t, session.AccessToken, "Chemical peel"),
		ScheduledAt: "2025-03-08T10:00",
	})
	scheduleForTest(t, env, session.AccessToken, scheduleProcedureRequest{
		ProcedureID: env.procedureID(t, session.AccessToken, "Botox"),
		ScheduledAt: "2025-03-21T11:00",
	})

	status, raw := env.do(t, http.MethodPost, fmt.Sprintf("/api/challenges/%d/join", challengeIDForTest(t, env, session.AccessToken, "Drink 2L of water")), session.AccessToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected join status 201, got %d: %s", status, raw)
	}
	joined := decodeJSON[userChallengeView](t, raw)
	if status, raw := env.do(t, http.MethodPost, fmt.Sprintf("/api/user-challenges/%d/check-in", joined.ID), session.AccessToken, nil); status != http.StatusOK {
		t.Fatalf("expected check-in status 200, got %d: %s", status, raw)
	}

	status, raw = env.do(t, http.MethodGet, "/api/dashboard", session.AccessToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected dashboard status 200, got %d: %s", status, raw)
	}
	dashboard := decodeJSON[dashboardView](t, raw)
	if dashboard.Nickname != "mina" || dashboard.Today != "2025-03-10" {
		t.Fatalf("unexpected dashboard header %+v", dashboard)
	}
	if dashboard.RecentProcedure == nil {
		t.Fatal("expected a recent procedure in downtime")
	}
	recent := dashboard.RecentProcedure
	if recent.Procedure.Procedure.Name != "Chemical peel" || recent.Phase != "SENSITIVE" || recent.DaysSince != 2 || recent.DayOfRecovery != 3 {
		t.Fatalf("unexpected recent procedure %+v", recent)
	}
	if dashboard.ActiveChallenges != 1 || dashboard.TodayCheckIns != 1 {
		t.Fatalf("expected one active challenge and one check-in, got %d/%d", dashboard.ActiveChallenges, dashboard.TodayCheckIns)
	}
	if len(dashboard.UpcomingProcedures) != 1 || dashboard.UpcomingProcedures[0].Procedure.Name != "Botox" {
		t.Fatalf("unexpected upcoming procedures %+v", dashboard.UpcomingProcedures)
	}
}

func TestRecommendationsUnavailableWithoutModel(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.onboardedUser(t, "mina@example.com")

	status, raw := env.do(t, http.MethodPost, "/api/recommendations", session.AccessToken, nil)
	if status != http.StatusServiceUnavailable || readAPIError(t, raw) != "recommendations unavailable" {
		t.Fatalf("expected 503 recommendations unavailable, got %d: %s", status, raw)
	}

	status, raw = env.do(t, http.MethodGet, "/api/recommendations", session.AccessToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected latest status 200, got %d: %s", status, raw)
	}
	latest := decodeJSON[struct {
		Available       bool                 `json:"available"`
		Recommendations []recommendationView `json:"recommendations"`
	}](t, raw)
	if latest.Available || len(latest.Recommendations) != 0 {
		t.Fatalf("unexpected latest payload %+v", latest)
	}
}

func TestRecommendationsGenerateAndLatest(t *testing.T) {
	completer := &completerStub{reply: "```json\n[{\"title\":\"Cool compress\",\"description\":\"Ten minutes after cleansing\",\"category\":\"Soothing\"},{\"title\":\"SPF reapply\",\"category\":\"protection\"}]\n```"}
	env := newTestEnv(t, completer)
	session := env.onboardedUser(t, "mina@example.com")

	status, raw := env.do(t, http.MethodPost, "/api/recommendations", session.AccessToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected generate status 201, got %d: %s", status, raw)
	}
	generated := decodeJSON[struct {
		Recommendations []recommendationView `json:"recommendations"`
	}](t, raw)
	if len(generated.Recommendations) != 2 || generated.Recommendations[0].Category != "soothing" {
		t.Fatalf("unexpected recommendations %+v", generated.Recommendations)
	}

	status, raw = env.do(t, http.MethodGet, "/api/recommendations", session.AccessToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected latest status 200, got %d: %s", status, raw)
	}
	latest := decodeJSON[struct {
		Available       bool                 `json:"available"`
		Recommendations []recommendationView `json:"recommendations"`
	}](t, raw)
	if !latest.Available || len(latest.Recommendations) != 2 || latest.Recommendations[0].BatchID != generated.Recommendations[0].BatchID {
		t.Fatalf("unexpected latest payload %+v", latest)
	}

	completer.err = errors.New("upstream timeout")
	status, raw = env.do(t, http.MethodPost, "/api/recommendations", session.AccessToken, nil)
	if status != http.StatusBadGateway || readAPIError(t, raw) != "recommendation failed" {
		t.Fatalf("expected 502 recommendation failed, got %d: %s", status, raw)
	}
	if completer.calls != 2 {
		t.Fatalf("expected two completer calls, got %d", completer.calls)
	}
}
