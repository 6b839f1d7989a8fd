package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/glowlog/internal/models"
)

// ChallengeCompletionRate is the achievement rate (percent) a challenge must
// reach by its end date to count as completed.
const ChallengeCompletionRate = 80.0

type ChallengeProgress struct {
	CheckIns        int     `json:"check_ins"`
	ElapsedDays     int     `json:"elapsed_days"`
	RemainingDays   int     `json:"remaining_days"`
	AchievementRate float64 `json:"achievement_rate"`
	CurrentStreak   int     `json:"current_streak"`
	Points          int     `json:"points"`
	CheckedInToday  bool    `json:"checked_in_today"`
}

// EffectiveDurationDays is the window length a challenge runs for. Catalog rows
// without a positive duration run for a single day.
func EffectiveDurationDays(challenge models.Challenge) int {
	if challenge.DurationDays < 1 {
		return 1
	}
	return challenge.DurationDays
}

// BuildChallengeProgress derives progress from the participation window and
// its check-in days. today and checkIns are storage days.
func BuildChallengeProgress(participation models.UserChallenge, checkIns []time.Time, today time.Time) ChallengeProgress {
	duration := EffectiveDurationDays(participation.Challenge)
	days := uniqueCheckInDays(participation, checkIns)

	progress := ChallengeProgress{
		CheckIns:        len(days),
		AchievementRate: AchievementRate(len(days), duration),
		Points:          len(days) * participation.Challenge.PointsPerCheckIn,
	}

	elapsed := CalendarDaysBetween(participation.StartDate, today) + 1
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > duration {
		elapsed = duration
	}
	progress.ElapsedDays = elapsed
	progress.RemainingDays = duration - elapsed

	if len(days) == 0 {
		return progress
	}
	last := days[len(days)-1]
	progress.CheckedInToday = last.Equal(today)
	if gap := CalendarDaysBetween(last, today); gap > 1 {
		return progress
	}

	streak := 1
	for index := len(days) - 1; index > 0; index-- {
		if CalendarDaysBetween(days[index-1], days[index]) != 1 {
			break
		}
		streak++
	}
	progress.CurrentStreak = streak
	return progress
}

func AchievementRate(checkIns int, durationDays int) float64 {
	if durationDays <= 0 {
		return 0
	}
	rate := float64(checkIns) / float64(durationDays) * 100
	if rate > 100 {
		rate = 100
	}
	return math.Round(rate*10) / 10
}

// FinalChallengeStatus is the status an expired active challenge settles into.
func FinalChallengeStatus(checkIns int, durationDays int) string {
	if AchievementRate(checkIns, durationDays) >= ChallengeCompletionRate {
		return models.ChallengeStatusCompleted
	}
	return models.ChallengeStatusFailed
}

func uniqueCheckInDays(participation models.UserChallenge, checkIns []time.Time) []time.Time {
	seen := make(map[string]struct{}, len(checkIns))
	days := make([]time.Time, 0, len(checkIns))
	for _, checkIn := range checkIns {
		day := StorageDay(checkIn, time.UTC)
		if day.Before(participation.StartDate) || day.After(participation.EndDate) {
			continue
		}
		key := day.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}
