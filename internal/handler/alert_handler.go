package handler

import (
	"strconv"

	"benefits-web/internal/models"
	"benefits-web/internal/repository"
	"benefits-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	alertRepo *repository.AlertRepository
}

func NewAlertHandler(alertRepo *repository.AlertRepository) *AlertHandler {
	return &AlertHandler{
		alertRepo: alertRepo,
	}
}

func (h *AlertHandler) GetAlerts(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	onlyUnresolved := c.QueryBool("unresolved", false)
	severity := c.Query("severity", "")
	if severity != "" && severity != models.SeverityHigh &&
		severity != models.SeverityMedium && severity != models.SeverityLow {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid severity filter", nil)
	}

	category := c.Query("category", "")
	if category != "" && category != models.AlertDuplicateID &&
		category != models.AlertOrphanedDependent && category != models.AlertEnrollmentWithoutCode {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid category filter", nil)
	}

	alerts, total, err := h.alertRepo.FindAll(params.Limit, offset, onlyUnresolved, severity, category)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve alerts", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"alerts":     alerts,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Alerts retrieved successfully", responseData, pagination)
}

func (h *AlertHandler) GetAlert(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid alert ID", err)
	}

	alert, err := h.alertRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Alert not found", err)
	}

	return utils.SuccessResponse(c, "Alert retrieved successfully", alert)
}

func (h *AlertHandler) ResolveAlert(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid alert ID", err)
	}

	userID := c.Locals("user_id").(int)

	if _, err := h.alertRepo.FindByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Alert not found", err)
	}

	if err := h.alertRepo.Resolve(id, userID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve alert", err)
	}

	alert, err := h.alertRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load alert", err)
	}

	return utils.SuccessResponse(c, "Alert resolved successfully", alert)
}

// ReopenAlert puts a resolved alert back in the queue, for findings
// closed by mistake.
func (h *AlertHandler) ReopenAlert(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid alert ID", err)
	}

	if _, err := h.alertRepo.FindByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Alert not found", err)
	}

	if err := h.alertRepo.Reopen(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reopen alert", err)
	}

	alert, err := h.alertRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load alert", err)
	}

	return utils.SuccessResponse(c, "Alert reopened successfully", alert)
}

func (h *AlertHandler) GetCounts(c *fiber.Ctx) error {
	counts, err := h.alertRepo.CountUnresolved()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count alerts", err)
	}

	return utils.SuccessResponse(c, "Alert counts retrieved successfully", counts)
}
