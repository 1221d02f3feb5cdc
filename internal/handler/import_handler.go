package handler

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"benefits-web/internal/config"
	"benefits-web/internal/models"
	"benefits-web/internal/repository"
	"benefits-web/internal/service"
	"benefits-web/internal/utils"
	"benefits-web/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type ImportHandler struct {
	importRepo    *repository.ImportRepository
	reportService *service.ExcelReportService
	asynqClient   *asynq.Client
	redis         *redis.Client
	cfg           *config.Config
}

func NewImportHandler(
	importRepo *repository.ImportRepository,
	asynqClient *asynq.Client,
	rdb *redis.Client,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importRepo:    importRepo,
		reportService: service.NewExcelReportService(),
		asynqClient:   asynqClient,
		redis:         rdb,
		cfg:           cfg,
	}
}

// UploadFile accepts a source file, stores it and queues the import
// run. The response carries the batch code so the client can poll
// progress and request cancellation.
func (h *ImportHandler) UploadFile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	var req models.ImportUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	importType, err := service.ParseImportType(req.ImportType)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unrecognized import type", err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !h.cfg.ExtensionAllowed(ext) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("File extension %s is not allowed", ext), nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	batchCode := service.NewBatchCode()
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", batchCode, ext))
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available", nil)
	}

	task, err := worker.NewImportTask(worker.ImportTaskPayload{
		BatchCode:  batchCode,
		ImportType: string(importType),
		FilePath:   filePath,
		Filename:   file.Filename,
		UserID:     userID,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build import task", err)
	}

	info, err := h.asynqClient.Enqueue(task, asynq.Queue("critical"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue import task", err)
	}

	return utils.SuccessResponse(c, "Import queued successfully", fiber.Map{
		"batch_code":  batchCode,
		"import_type": importType,
		"job_id":      info.ID,
	})
}

func (h *ImportHandler) GetBatches(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	batches, total, err := h.importRepo.GetBatches(params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve import batches", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"batches":    batches,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Import batches retrieved successfully", responseData, pagination)
}

func (h *ImportHandler) GetBatch(c *fiber.Ctx) error {
	batch, err := h.importRepo.FindBatchByCode(c.Params("code"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import batch not found", err)
	}

	return utils.SuccessResponse(c, "Import batch retrieved successfully", batch)
}

func (h *ImportHandler) GetRowErrors(c *fiber.Ctx) error {
	batch, err := h.importRepo.FindBatchByCode(c.Params("code"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import batch not found", err)
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	rowErrors, total, err := h.importRepo.GetRowErrors(batch.ID, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve row errors", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"batch":      batch,
		"errors":     rowErrors,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Row errors retrieved successfully", responseData, pagination)
}

// GetProgress reports the processed-row counter the worker publishes
// while a batch runs.
func (h *ImportHandler) GetProgress(c *fiber.Ctx) error {
	code := c.Params("code")

	batch, err := h.importRepo.FindBatchByCode(code)
	if err == nil && batch != nil && batch.FinalizedAt.Valid {
		return utils.SuccessResponse(c, "Import finished", fiber.Map{
			"batch_code": code,
			"status":     batch.Status,
			"processed":  batch.RowsTotal,
			"rows_total": batch.RowsTotal,
		})
	}

	processed, err := h.redis.Get(c.Context(), worker.ProgressKey(code)).Int()
	if err == redis.Nil {
		processed = 0
	} else if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read progress", err)
	}

	status := models.ImportStatusReceived
	if batch != nil {
		status = batch.Status
	}

	return utils.SuccessResponse(c, "Import in progress", fiber.Map{
		"batch_code": code,
		"status":     status,
		"processed":  processed,
	})
}

// Cancel flags a running batch. The worker honors the flag between
// record batches; work already flushed stays committed.
func (h *ImportHandler) Cancel(c *fiber.Ctx) error {
	code := c.Params("code")

	if batch, err := h.importRepo.FindBatchByCode(code); err == nil && batch != nil && batch.FinalizedAt.Valid {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Import batch already finished", nil)
	}

	if err := h.redis.Set(c.Context(), worker.CancelKey(code), "1", time.Hour).Err(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to request cancellation", err)
	}

	return utils.SuccessResponse(c, "Cancellation requested", fiber.Map{
		"batch_code": code,
	})
}

func (h *ImportHandler) DownloadErrorReport(c *fiber.Ctx) error {
	batch, err := h.importRepo.FindBatchByCode(c.Params("code"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Import batch not found", err)
	}

	rowErrors, err := h.importRepo.AllRowErrors(batch.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve row errors", err)
	}

	reportName := fmt.Sprintf("errors_%s_%s.xlsx", batch.BatchCode, time.Now().Format("20060102_150405"))
	reportPath := filepath.Join(h.cfg.UploadPath, reportName)

	if err := h.reportService.GenerateErrorReport(batch, rowErrors, reportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate error report", err)
	}

	return c.Download(reportPath, reportName)
}

func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	importType, err := service.ParseImportType(c.Params("type"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unrecognized import type", err)
	}

	templateName := fmt.Sprintf("template_%s.xlsx", strings.ToLower(string(importType)))
	templatePath := filepath.Join(h.cfg.UploadPath, templateName)

	if err := h.reportService.GenerateImportTemplate(importType, templatePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}

	return c.Download(templatePath, templateName)
}

func (h *ImportHandler) GetImportTypes(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "Import types retrieved successfully", service.ImportTypes())
}
