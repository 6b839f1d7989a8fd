package api

import (
	"time"

	"github.com/terraincognita07/glowlog/internal/models"
	"github.com/terraincognita07/glowlog/internal/services"
)

const viewDateLayout = "2006-01-02"

type userView struct {
	ID                  uint     `json:"id"`
	Email               string   `json:"email"`
	Nickname            string   `json:"nickname"`
	BirthYear           int      `json:"birth_year"`
	Gender              string   `json:"gender"`
	Concerns            []string `json:"concerns"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
	MustChangePassword  bool     `json:"must_change_password"`
	CreatedAt           string   `json:"created_at"`
}

type sessionView struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         userView `json:"user"`
}

type downtimeView struct {
	TotalDays     int      `json:"total_days"`
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	SensitiveDays []string `json:"sensitive_days"`
	CautionDays   []string `json:"caution_days"`
	RecoveryDays  []string `json:"recovery_days"`
}

type scheduledProcedureView struct {
	ID           uint             `json:"id"`
	Procedure    models.Procedure `json:"procedure"`
	ScheduledAt  string           `json:"scheduled_at"`
	Date         string           `json:"date"`
	DowntimeDays int              `json:"downtime_days"`
	Overridden   bool             `json:"downtime_overridden"`
	Memo         string           `json:"memo"`
	Downtime     *downtimeView    `json:"downtime,omitempty"`
}

type recentProcedureView struct {
	Procedure     scheduledProcedureView `json:"procedure"`
	Phase         string                 `json:"phase"`
	DaysSince     int                    `json:"days_since"`
	DayOfRecovery int                    `json:"day_of_recovery"`
	RemainingDays int                    `json:"remaining_days"`
}

type dashboardView struct {
	Nickname           string                   `json:"nickname"`
	Today              string                   `json:"today"`
	RecentProcedure    *recentProcedureView     `json:"recent_procedure"`
	ActiveChallenges   int64                    `json:"active_challenges"`
	TodayCheckIns      int64                    `json:"today_check_ins"`
	UpcomingProcedures []scheduledProcedureView `json:"upcoming_procedures"`
}

type userChallengeView struct {
	ID         uint                       `json:"id"`
	Challenge  models.Challenge           `json:"challenge"`
	StartDate  string                     `json:"start_date"`
	EndDate    string                     `json:"end_date"`
	Status     string                     `json:"status"`
	FinishedAt *string                    `json:"finished_at"`
	Progress   services.ChallengeProgress `json:"progress"`
}

type recommendationView struct {
	ID          uint   `json:"id"`
	BatchID     string `json:"batch_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
}

func formatDay(value time.Time) string {
	return value.Format(viewDateLayout)
}

func formatDays(days []time.Time) []string {
	formatted := make([]string, 0, len(days))
	for _, day := range days {
		formatted = append(formatted, formatDay(day))
	}
	return formatted
}

func newUserView(user models.User, location *time.Location) userView {
	concerns := user.Concerns
	if concerns == nil {
		concerns = []string{}
	}
	return userView{
		ID:                  user.ID,
		Email:               user.Email,
		Nickname:            user.Nickname,
		BirthYear:           user.BirthYear,
		Gender:              user.Gender,
		Concerns:            concerns,
		OnboardingCompleted: user.OnboardingCompleted,
		MustChangePassword:  user.MustChangePassword,
		CreatedAt:           user.CreatedAt.In(location).Format(time.RFC3339),
	}
}

func newDowntimeView(window services.DowntimeWindow) downtimeView {
	view := downtimeView{
		TotalDays:     window.TotalDays(),
		SensitiveDays: formatDays(window.SensitiveDays),
		CautionDays:   formatDays(window.CautionDays),
		RecoveryDays:  formatDays(window.RecoveryDays),
	}
	if start, ok := window.Start(); ok {
		view.StartDate = formatDay(start)
	}
	if end, ok := window.End(); ok {
		view.EndDate = formatDay(end)
	}
	return view
}

func newScheduledProcedureView(entry models.ScheduledProcedure, location *time.Location) scheduledProcedureView {
	local := entry.ScheduledAt.In(location)
	return scheduledProcedureView{
		ID:           entry.ID,
		Procedure:    entry.Procedure,
		ScheduledAt:  local.Format(time.RFC3339),
		Date:         formatDay(local),
		DowntimeDays: entry.EffectiveDowntimeDays(),
		Overridden:   entry.DowntimeDays != nil,
		Memo:         entry.Memo,
	}
}

func newScheduledProcedureDetailView(detail services.ScheduledProcedureDetail, location *time.Location) scheduledProcedureView {
	view := newScheduledProcedureView(detail.Scheduled, location)
	downtime := newDowntimeView(detail.Downtime)
	view.Downtime = &downtime
	return view
}

func newDashboardView(dashboard services.Dashboard, location *time.Location) dashboardView {
	view := dashboardView{
		Nickname:           dashboard.Nickname,
		Today:              formatDay(dashboard.Today),
		ActiveChallenges:   dashboard.ActiveChallenges,
		TodayCheckIns:      dashboard.TodayCheckIns,
		UpcomingProcedures: make([]scheduledProcedureView, 0, len(dashboard.UpcomingProcedures)),
	}
	for _, entry := range dashboard.UpcomingProcedures {
		view.UpcomingProcedures = append(view.UpcomingProcedures, newScheduledProcedureView(entry, location))
	}
	if recent := dashboard.RecentProcedure; recent != nil {
		view.RecentProcedure = &recentProcedureView{
			Procedure: newScheduledProcedureDetailView(services.ScheduledProcedureDetail{
				Scheduled: recent.Scheduled,
				Downtime:  recent.Downtime,
			}, location),
			Phase:         string(recent.Phase),
			DaysSince:     recent.DaysSince,
			DayOfRecovery: recent.DayOfRecovery,
			RemainingDays: recent.RemainingDays,
		}
	}
	return view
}

func newUserChallengeView(view services.UserChallengeView, location *time.Location) userChallengeView {
	participation := view.Participation
	result := userChallengeView{
		ID:        participation.ID,
		Challenge: participation.Challenge,
		StartDate: formatDay(participation.StartDate),
		EndDate:   formatDay(participation.EndDate),
		Status:    participation.Status,
		Progress:  view.Progress,
	}
	if participation.FinishedAt != nil {
		finished := participation.FinishedAt.In(location).Format(time.RFC3339)
		result.FinishedAt = &finished
	}
	return result
}

func newUserChallengeViews(views []services.UserChallengeView, location *time.Location) []userChallengeView {
	result := make([]userChallengeView, 0, len(views))
	for _, view := range views {
		result = append(result, newUserChallengeView(view, location))
	}
	return result
}

func newRecommendationViews(items []models.Recommendation, location *time.Location) []recommendationView {
	result := make([]recommendationView, 0, len(items))
	for _, item := range items {
		result = append(result, recommendationView{
			ID:          item.ID,
			BatchID:     item.BatchID,
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			CreatedAt:   item.CreatedAt.In(location).Format(time.RFC3339),
		})
	}
	return result
}
