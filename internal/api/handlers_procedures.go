package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/glowlog/internal/services"
)

var scheduleTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type scheduleProcedureRequest struct {
	ProcedureID  uint   `json:"procedure_id"`
	ScheduledAt  string `json:"scheduled_at"`
	DowntimeDays *int   `json:"downtime_days"`
	Memo         string `json:"memo"`
}

func (handler *Handler) ListProcedures(c *fiber.Ctx) error {
	procedures, err := handler.procedureSvc.ListCatalog()
	if err != nil {
		return handler.respondError(c, err, "failed to load procedures")
	}
	return c.JSON(fiber.Map{"procedures": procedures})
}

func (handler *Handler) SearchProcedures(c *fiber.Ctx) error {
	procedures, err := handler.procedureSvc.Search(c.UserContext(), c.Query("keyword"))
	if err != nil {
		return handler.respondError(c, err, "failed to search procedures")
	}
	return c.JSON(fiber.Map{"procedures": procedures})
}

func (handler *Handler) ScheduleProcedure(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request scheduleProcedureRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	scheduledAt, err := parseScheduleTime(request.ScheduledAt, handler.location)
	if err != nil {
		return handler.respondError(c, err, "invalid scheduled_at")
	}

	entry, err := handler.procedureSvc.Schedule(user.ID, services.ScheduleProcedureInput{
		ProcedureID:  request.ProcedureID,
		ScheduledAt:  scheduledAt,
		DowntimeDays: request.DowntimeDays,
		Memo:         request.Memo,
	})
	if err != nil {
		return handler.respondError(c, err, "failed to schedule procedure")
	}

	window, err := services.ProcedureDowntime(entry, handler.location)
	if err != nil {
		return handler.respondError(c, err, "failed to schedule procedure")
	}
	return c.Status(fiber.StatusCreated).JSON(newScheduledProcedureDetailView(services.ScheduledProcedureDetail{
		Scheduled: entry,
		Downtime:  window,
	}, handler.location))
}

func (handler *Handler) GetScheduledProcedure(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	scheduledID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	entry, err := handler.procedureSvc.Get(user.ID, scheduledID)
	if err != nil {
		return handler.respondError(c, err, "failed to load procedure")
	}
	window, err := services.ProcedureDowntime(entry, handler.location)
	if err != nil {
		return handler.respondError(c, err, "failed to load procedure")
	}
	return c.JSON(newScheduledProcedureDetailView(services.ScheduledProcedureDetail{
		Scheduled: entry,
		Downtime:  window,
	}, handler.location))
}

func (handler *Handler) DeleteScheduledProcedure(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	scheduledID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	if err := handler.procedureSvc.Delete(user.ID, scheduledID); err != nil {
		return handler.respondError(c, err, "failed to delete procedure")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// parseScheduleTime accepts RFC3339 or a local wall-clock time. A bare date
// schedules at local midnight.
func parseScheduleTime(raw string, location *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, services.ErrInvalidScheduleDate
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	for _, layout := range scheduleTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, value, location); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, services.ErrInvalidScheduleDate
}
