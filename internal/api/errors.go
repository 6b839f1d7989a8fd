package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/terraincognita07/glowlog/internal/services"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

var serviceErrorMappings = []errorMapping{
	{services.ErrInvalidDowntimeDays, fiber.StatusBadRequest, "invalid downtime days"},
	{services.ErrInvalidStartDate, fiber.StatusBadRequest, "invalid start date"},
	{services.ErrInvalidYearRange, fiber.StatusBadRequest, "invalid year range"},
	{services.ErrInvalidMonthRange, fiber.StatusBadRequest, "invalid month range"},
	{services.ErrInvalidCalendarDate, fiber.StatusBadRequest, "invalid date"},
	{services.ErrInvalidScheduleDate, fiber.StatusBadRequest, "invalid scheduled_at"},
	{services.ErrInvalidDowntimeOverride, fiber.StatusBadRequest, "downtime_days must be between 0 and 90"},
	{services.ErrInvalidSearchKeyword, fiber.StatusBadRequest, "keyword must be 1 to 50 characters"},
	{services.ErrExportFormatInvalid, fiber.StatusBadRequest, "invalid export format"},
	{services.ErrExportFromDateInvalid, fiber.StatusBadRequest, "invalid from date"},
	{services.ErrExportToDateInvalid, fiber.StatusBadRequest, "invalid to date"},
	{services.ErrExportRangeInvalid, fiber.StatusBadRequest, "invalid export range"},
	{services.ErrAuthCredentialsInvalid, fiber.StatusBadRequest, "invalid email or password"},
	{services.ErrAuthPasswordMismatch, fiber.StatusBadRequest, "passwords do not match"},
	{services.ErrWeakPassword, fiber.StatusBadRequest, "weak password"},
	{services.ErrOnboardingNicknameInvalid, fiber.StatusBadRequest, "invalid nickname"},
	{services.ErrOnboardingBirthYearInvalid, fiber.StatusBadRequest, "invalid birth year"},
	{services.ErrOnboardingGenderInvalid, fiber.StatusBadRequest, "invalid gender"},
	{services.ErrOnboardingConcernsInvalid, fiber.StatusBadRequest, "invalid concerns"},
	{services.ErrOnboardingStepsRequired, fiber.StatusBadRequest, "complete onboarding steps first"},
	{services.ErrCheckInOutsideWindow, fiber.StatusBadRequest, "check-in outside challenge window"},
	{services.ErrPasswordTooLong, fiber.StatusBadRequest, "password too long"},
	{services.ErrPasswordChangeIncomplete, fiber.StatusBadRequest, "invalid input"},
	{services.ErrPasswordUnchanged, fiber.StatusBadRequest, "new password must differ"},

	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "invalid credentials"},
	{services.ErrCurrentPasswordInvalid, fiber.StatusUnauthorized, "invalid current password"},
	{services.ErrDeleteAccountInvalid, fiber.StatusUnauthorized, "invalid password"},

	{services.ErrProcedureNotFound, fiber.StatusNotFound, "procedure not found"},
	{services.ErrCatalogProcedureNotFound, fiber.StatusNotFound, "catalog procedure not found"},
	{services.ErrChallengeNotFound, fiber.StatusNotFound, "challenge not found"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "user not found"},

	{services.ErrAuthEmailExists, fiber.StatusConflict, "email already exists"},
	{services.ErrChallengeAlreadyJoined, fiber.StatusConflict, "challenge already joined"},
	{services.ErrChallengeAlreadyChecked, fiber.StatusConflict, "already checked in today"},
	{services.ErrChallengeNotActive, fiber.StatusConflict, "challenge not active"},
	{services.ErrOnboardingAlreadyDone, fiber.StatusConflict, "onboarding already completed"},

	{services.ErrRecommendationFailed, fiber.StatusBadGateway, "recommendation failed"},
	{services.ErrRecommendationsUnavailable, fiber.StatusServiceUnavailable, "recommendations unavailable"},
}

func statusForError(err error) (int, string, bool) {
	for _, mapping := range serviceErrorMappings {
		if errors.Is(err, mapping.err) {
			return mapping.status, mapping.message, true
		}
	}
	return 0, "", false
}

// respondError maps known service errors and logs everything else as a 500
// with the given public message.
func (handler *Handler) respondError(c *fiber.Ctx, err error, fallback string) error {
	if status, message, ok := statusForError(err); ok {
		return apiError(c, status, message)
	}
	handler.logger.Error(fallback,
		zap.Error(err),
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
