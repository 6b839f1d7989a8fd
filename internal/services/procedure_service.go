package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/glowlog/internal/models"
)

const (
	MaxDowntimeOverrideDays = 90
	MaxProcedureMemoLength  = 500
	MaxSearchKeywordLength  = 50
	DefaultSearchLimit      = 20
)

var (
	ErrCatalogProcedureNotFound = errors.New("catalog procedure not found")
	ErrInvalidDowntimeOverride  = errors.New("invalid downtime override")
	ErrInvalidScheduleDate      = errors.New("invalid schedule date")
	ErrInvalidSearchKeyword     = errors.New("invalid search keyword")
)

type ProcedureCatalogRepository interface {
	List() ([]models.Procedure, error)
	FindByID(procedureID uint) (models.Procedure, bool, error)
}

type ScheduledProcedureWriter interface {
	Create(entry *models.ScheduledProcedure) error
	FindByIDForUser(userID uint, scheduledID uint) (models.ScheduledProcedure, bool, error)
	DeleteByIDForUser(userID uint, scheduledID uint) (bool, error)
}

type ProcedureSearchIndex interface {
	SearchProcedures(ctx context.Context, keyword string, limit int) ([]models.Procedure, error)
}

type ScheduleProcedureInput struct {
	ProcedureID  uint
	ScheduledAt  time.Time
	DowntimeDays *int
	Memo         string
}

type ProcedureService struct {
	catalog   ProcedureCatalogRepository
	scheduled ScheduledProcedureWriter
	index     ProcedureSearchIndex
	location  *time.Location
}

func NewProcedureService(catalog ProcedureCatalogRepository, scheduled ScheduledProcedureWriter, index ProcedureSearchIndex, location *time.Location) *ProcedureService {
	if location == nil {
		location = time.UTC
	}
	return &ProcedureService{
		catalog:   catalog,
		scheduled: scheduled,
		index:     index,
		location:  location,
	}
}

func (service *ProcedureService) ListCatalog() ([]models.Procedure, error) {
	return service.catalog.List()
}

func NormalizeSearchKeyword(raw string) (string, error) {
	keyword := strings.Join(strings.Fields(raw), " ")
	length := utf8.RuneCountInString(keyword)
	if length == 0 || length > MaxSearchKeywordLength {
		return "", ErrInvalidSearchKeyword
	}
	return keyword, nil
}

func (service *ProcedureService) Search(ctx context.Context, raw string) ([]models.Procedure, error) {
	keyword, err := NormalizeSearchKeyword(raw)
	if err != nil {
		return nil, err
	}
	results, err := service.index.SearchProcedures(ctx, keyword, DefaultSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search procedures: %w", err)
	}
	return results, nil
}

func (service *ProcedureService) Schedule(userID uint, input ScheduleProcedureInput) (models.ScheduledProcedure, error) {
	if input.ScheduledAt.IsZero() {
		return models.ScheduledProcedure{}, ErrInvalidScheduleDate
	}
	if year := input.ScheduledAt.In(service.location).Year(); year < MinCalendarYear || year > MaxCalendarYear {
		return models.ScheduledProcedure{}, ErrInvalidScheduleDate
	}
	if input.DowntimeDays != nil && (*input.DowntimeDays < 0 || *input.DowntimeDays > MaxDowntimeOverrideDays) {
		return models.ScheduledProcedure{}, ErrInvalidDowntimeOverride
	}

	procedure, found, err := service.catalog.FindByID(input.ProcedureID)
	if err != nil {
		return models.ScheduledProcedure{}, fmt.Errorf("load catalog procedure: %w", err)
	}
	if !found {
		return models.ScheduledProcedure{}, ErrCatalogProcedureNotFound
	}

	memo := strings.TrimSpace(input.Memo)
	if utf8.RuneCountInString(memo) > MaxProcedureMemoLength {
		memo = string([]rune(memo)[:MaxProcedureMemoLength])
	}

	entry := models.ScheduledProcedure{
		UserID:       userID,
		ProcedureID:  procedure.ID,
		Procedure:    procedure,
		ScheduledAt:  input.ScheduledAt.In(service.location),
		DowntimeDays: input.DowntimeDays,
		Memo:         memo,
	}
	if err := service.scheduled.Create(&entry); err != nil {
		return models.ScheduledProcedure{}, fmt.Errorf("create scheduled procedure: %w", err)
	}
	return entry, nil
}

func (service *ProcedureService) Get(userID uint, scheduledID uint) (models.ScheduledProcedure, error) {
	entry, found, err := service.scheduled.FindByIDForUser(userID, scheduledID)
	if err != nil {
		return models.ScheduledProcedure{}, fmt.Errorf("load scheduled procedure: %w", err)
	}
	if !found {
		return models.ScheduledProcedure{}, ErrProcedureNotFound
	}
	return entry, nil
}

func (service *ProcedureService) Delete(userID uint, scheduledID uint) error {
	deleted, err := service.scheduled.DeleteByIDForUser(userID, scheduledID)
	if err != nil {
		return fmt.Errorf("delete scheduled procedure: %w", err)
	}
	if !deleted {
		return ErrProcedureNotFound
	}
	return nil
}
