package api

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/glowlog/internal/services"
)

// ExportScheduledProcedures streams the user's procedures with their downtime
// summary as CSV or XLSX.
func (handler *Handler) ExportScheduledProcedures(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	format, err := services.NormalizeExportFormat(c.Query("format"))
	if err != nil {
		return handler.respondError(c, err, "invalid export format")
	}
	from, to, err := services.ParseExportRange(c.Query("from"), c.Query("to"), handler.location)
	if err != nil {
		return handler.respondError(c, err, "invalid export range")
	}

	rows, err := handler.exportService.BuildRows(user.ID, from, to)
	if err != nil {
		return handler.respondError(c, err, "failed to export procedures")
	}

	var body bytes.Buffer
	if err := handler.exportService.Write(&body, format, rows); err != nil {
		return handler.respondError(c, err, "failed to export procedures")
	}

	c.Set(fiber.HeaderContentType, services.ExportContentType(format))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", services.ExportFilename(handler.now(), format)))
	return c.Send(body.Bytes())
}
