package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/glowlog/internal/models"
)

var (
	ErrOnboardingStepsRequired = errors.New("complete onboarding steps first")
	ErrOnboardingAlreadyDone   = errors.New("onboarding already completed")
)

type OnboardingUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpdateByID(userID uint, updates map[string]any) error
	UpdateConcerns(userID uint, concerns []string) error
}

type OnboardingService struct {
	users OnboardingUserRepository
}

func NewOnboardingService(users OnboardingUserRepository) *OnboardingService {
	return &OnboardingService{users: users}
}

func (service *OnboardingService) SaveProfile(userID uint, input OnboardingProfileInput, now time.Time) (OnboardingProfileInput, error) {
	normalized, err := NormalizeOnboardingProfile(input, now)
	if err != nil {
		return OnboardingProfileInput{}, err
	}
	if err := service.users.UpdateByID(userID, map[string]any{
		"nickname":   normalized.Nickname,
		"birth_year": normalized.BirthYear,
		"gender":     normalized.Gender,
	}); err != nil {
		return OnboardingProfileInput{}, fmt.Errorf("save onboarding profile: %w", err)
	}
	return normalized, nil
}

func (service *OnboardingService) SaveConcerns(userID uint, raw []string) ([]string, error) {
	concerns, err := NormalizeConcerns(raw)
	if err != nil {
		return nil, err
	}
	if err := service.users.UpdateConcerns(userID, concerns); err != nil {
		return nil, fmt.Errorf("save onboarding concerns: %w", err)
	}
	return concerns, nil
}

func (service *OnboardingService) Complete(userID uint) error {
	current, err := service.users.FindByID(userID)
	if err != nil {
		return err
	}
	if current.OnboardingCompleted {
		return ErrOnboardingAlreadyDone
	}
	if current.Nickname == "" || current.BirthYear == 0 || current.Gender == "" {
		return ErrOnboardingStepsRequired
	}
	return service.users.UpdateByID(userID, map[string]any{"onboarding_completed": true})
}
