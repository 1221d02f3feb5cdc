package handler

import (
	"fmt"
	"path/filepath"
	"time"

	"benefits-web/internal/config"
	"benefits-web/internal/repository"
	"benefits-web/internal/service"
	"benefits-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService *service.ReportService
	excelService  *service.ExcelReportService
	employeeRepo  *repository.EmployeeRepository
	cfg           *config.Config
}

func NewReportHandler(reportService *service.ReportService, employeeRepo *repository.EmployeeRepository, cfg *config.Config) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		excelService:  service.NewExcelReportService(),
		employeeRepo:  employeeRepo,
		cfg:           cfg,
	}
}

func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	summary, err := h.reportService.DashboardSummary()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build dashboard summary", err)
	}

	return utils.SuccessResponse(c, "Dashboard summary retrieved successfully", summary)
}

func (h *ReportHandler) ExportEmployees(c *fiber.Ctx) error {
	includeDeleted := c.QueryBool("include_deleted", false)

	employees, _, err := h.employeeRepo.FindAll(1000000, 0, "", includeDeleted)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve employees", err)
	}

	exportName := fmt.Sprintf("employees_%s.xlsx", time.Now().Format("20060102_150405"))
	exportPath := filepath.Join(h.cfg.UploadPath, exportName)

	if err := h.excelService.ExportEmployees(employees, exportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export employees", err)
	}

	return c.Download(exportPath, exportName)
}
