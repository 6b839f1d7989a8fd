package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/glowlog/internal/models"
)

const (
	MinNicknameLength     = 2
	MaxNicknameLength     = 20
	MinBirthYear          = 1900
	MinimumUserAge        = 14
	MaxOnboardingConcerns = 5
)

var (
	ErrOnboardingNicknameInvalid  = errors.New("invalid nickname")
	ErrOnboardingBirthYearInvalid = errors.New("invalid birth year")
	ErrOnboardingGenderInvalid    = errors.New("invalid gender")
	ErrOnboardingConcernsInvalid  = errors.New("invalid concerns")
)

var SkinConcerns = []string{
	"acne",
	"pigmentation",
	"wrinkles",
	"pores",
	"redness",
	"dryness",
	"sagging",
	"scars",
}

type OnboardingProfileInput struct {
	Nickname  string
	BirthYear int
	Gender    string
}

func NormalizeOnboardingProfile(input OnboardingProfileInput, now time.Time) (OnboardingProfileInput, error) {
	input.Nickname = strings.TrimSpace(input.Nickname)
	length := utf8.RuneCountInString(input.Nickname)
	if length < MinNicknameLength || length > MaxNicknameLength {
		return OnboardingProfileInput{}, ErrOnboardingNicknameInvalid
	}

	if input.BirthYear < MinBirthYear || input.BirthYear > now.Year()-MinimumUserAge {
		return OnboardingProfileInput{}, ErrOnboardingBirthYearInvalid
	}

	input.Gender = strings.ToLower(strings.TrimSpace(input.Gender))
	switch input.Gender {
	case models.GenderFemale, models.GenderMale, models.GenderOther:
	default:
		return OnboardingProfileInput{}, ErrOnboardingGenderInvalid
	}
	return input, nil
}

// NormalizeConcerns lowercases, deduplicates and validates concerns against
// the supported catalog, preserving the caller's order.
func NormalizeConcerns(raw []string) ([]string, error) {
	supported := make(map[string]bool, len(SkinConcerns))
	for _, concern := range SkinConcerns {
		supported[concern] = true
	}

	seen := make(map[string]bool, len(raw))
	concerns := make([]string, 0, len(raw))
	for _, value := range raw {
		concern := strings.ToLower(strings.TrimSpace(value))
		if concern == "" || seen[concern] {
			continue
		}
		if !supported[concern] {
			return nil, ErrOnboardingConcernsInvalid
		}
		seen[concern] = true
		concerns = append(concerns, concern)
	}

	if len(concerns) > MaxOnboardingConcerns {
		return nil, ErrOnboardingConcernsInvalid
	}
	return concerns, nil
}
