package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/glowlog/internal/services"
)

func (handler *Handler) CalendarMonthly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	year, err := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	if err != nil {
		return handler.respondError(c, services.ErrInvalidYearRange, "")
	}
	month, err := strconv.Atoi(strings.TrimSpace(c.Query("month")))
	if err != nil {
		return handler.respondError(c, services.ErrInvalidMonthRange, "")
	}

	counts, err := handler.calendarService.MonthlyCounts(user.ID, year, month)
	if err != nil {
		return handler.respondError(c, err, "failed to load calendar")
	}

	days := make(map[string]int, len(counts))
	for day, count := range counts {
		days[strconv.Itoa(day)] = count
	}
	return c.JSON(fiber.Map{
		"year":  year,
		"month": month,
		"days":  days,
	})
}

func (handler *Handler) CalendarDaily(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := services.ParseCalendarDate(c.Query("date"), handler.location)
	if err != nil {
		return handler.respondError(c, err, "invalid date")
	}
	details, err := handler.calendarService.DailyDetail(user.ID, day)
	if err != nil {
		return handler.respondError(c, err, "failed to load day")
	}

	procedures := make([]scheduledProcedureView, 0, len(details))
	for _, detail := range details {
		procedures = append(procedures, newScheduledProcedureDetailView(detail, handler.location))
	}
	return c.JSON(fiber.Map{
		"date":       formatDay(day),
		"procedures": procedures,
	})
}

func (handler *Handler) CalendarEventDowntime(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	scheduledID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	window, err := handler.calendarService.EventDowntime(user.ID, scheduledID)
	if err != nil {
		return handler.respondError(c, err, "failed to load downtime")
	}
	return c.JSON(newDowntimeView(window))
}
