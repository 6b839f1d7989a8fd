package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terraincognita07/glowlog/internal/models"
)

const MaxRecommendations = 5

var (
	ErrRecommendationsUnavailable = errors.New("recommendations unavailable")
	ErrRecommendationFailed       = errors.New("recommendation failed")
)

const recommendationSystemPrompt = "You are a skincare habit coach. Suggest short daily habit challenges. " +
	"Reply with a JSON array only. Each item has the string fields title, description and category."

// Completer sends one prompt to a chat model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, system string, prompt string) (string, error)
}

type RecommendationRepository interface {
	SaveBatch(items []models.Recommendation) error
	LatestBatch(userID uint) ([]models.Recommendation, error)
}

type RecentProcedureFinder interface {
	RecentProcedure(userID uint, now time.Time) (*RecentProcedure, error)
}

type RecommendationService struct {
	completer       Completer
	recommendations RecommendationRepository
	users           DashboardUserRepository
	recent          RecentProcedureFinder
	newBatchID      func() string
}

func NewRecommendationService(completer Completer, recommendations RecommendationRepository, users DashboardUserRepository, recent RecentProcedureFinder) *RecommendationService {
	return &RecommendationService{
		completer:       completer,
		recommendations: recommendations,
		users:           users,
		recent:          recent,
		newBatchID:      uuid.NewString,
	}
}

func (service *RecommendationService) Available() bool {
	return service != nil && service.completer != nil
}

func (service *RecommendationService) Generate(ctx context.Context, userID uint, now time.Time) ([]models.Recommendation, error) {
	if !service.Available() {
		return nil, ErrRecommendationsUnavailable
	}

	user, err := service.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load recommendation user: %w", err)
	}
	recent, err := service.recent.RecentProcedure(userID, now)
	if err != nil {
		return nil, err
	}

	reply, err := service.completer.Complete(ctx, recommendationSystemPrompt, BuildRecommendationPrompt(user, recent))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}
	suggestions, err := ParseRecommendations(reply)
	if err != nil {
		return nil, err
	}

	batchID := service.newBatchID()
	items := make([]models.Recommendation, 0, len(suggestions))
	for _, suggestion := range suggestions {
		items = append(items, models.Recommendation{
			UserID:      userID,
			BatchID:     batchID,
			Title:       suggestion.Title,
			Description: suggestion.Description,
			Category:    suggestion.Category,
			CreatedAt:   now,
		})
	}
	if err := service.recommendations.SaveBatch(items); err != nil {
		return nil, fmt.Errorf("save recommendations: %w", err)
	}
	return items, nil
}

func (service *RecommendationService) Latest(userID uint) ([]models.Recommendation, error) {
	items, err := service.recommendations.LatestBatch(userID)
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	return items, nil
}

func BuildRecommendationPrompt(user models.User, recent *RecentProcedure) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Suggest up to %d habit challenges.\n", MaxRecommendations))
	if len(user.Concerns) > 0 {
		prompt.WriteString("Skin concerns: " + strings.Join(user.Concerns, ", ") + ".\n")
	} else {
		prompt.WriteString("Skin concerns: none given.\n")
	}
	if recent != nil {
		prompt.WriteString(fmt.Sprintf(
			"Recent procedure: %s, day %d of %d, phase %s.\n",
			recent.Scheduled.Procedure.Name,
			recent.DayOfRecovery,
			recent.Downtime.TotalDays(),
			recent.Phase,
		))
	} else {
		prompt.WriteString("No procedure in downtime.\n")
	}
	return prompt.String()
}

type RecommendationSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ParseRecommendations extracts the JSON array from a model reply. Markdown
// code fences and surrounding prose are ignored.
func ParseRecommendations(reply string) ([]RecommendationSuggestion, error) {
	body := stripCodeFence(reply)
	start := strings.Index(body, "[")
	end := strings.LastIndex(body, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in reply", ErrRecommendationFailed)
	}

	var parsed []RecommendationSuggestion
	if err := json.Unmarshal([]byte(body[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}

	suggestions := make([]RecommendationSuggestion, 0, MaxRecommendations)
	for _, item := range parsed {
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			continue
		}
		item.Description = strings.TrimSpace(item.Description)
		item.Category = strings.ToLower(strings.TrimSpace(item.Category))
		suggestions = append(suggestions, item)
		if len(suggestions) == MaxRecommendations {
			break
		}
	}
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: empty suggestion list", ErrRecommendationFailed)
	}
	return suggestions, nil
}

func stripCodeFence(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
}
