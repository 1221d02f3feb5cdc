package handler

import (
	"database/sql"
	"strconv"
	"strings"

	"benefits-web/internal/models"
	"benefits-web/internal/repository"
	"benefits-web/internal/service"
	"benefits-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PlanHandler struct {
	planRepo     *repository.PlanRepository
	employeeRepo *repository.EmployeeRepository
}

func NewPlanHandler(planRepo *repository.PlanRepository, employeeRepo *repository.EmployeeRepository) *PlanHandler {
	return &PlanHandler{
		planRepo:     planRepo,
		employeeRepo: employeeRepo,
	}
}

func (h *PlanHandler) GetEnrollments(c *fiber.Ctx) error {
	employeeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	enrollments, err := h.planRepo.FindByEmployee(employeeID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve enrollments", err)
	}

	return utils.SuccessResponse(c, "Enrollments retrieved successfully", enrollments)
}

func (h *PlanHandler) CreateEnrollment(c *fiber.Ctx) error {
	employeeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	var req models.EnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	if _, err := h.employeeRepo.FindByID(employeeID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", err)
	}

	enrollment, problems := buildEnrollment(&models.PlanEnrollment{EmployeeID: employeeID, Active: true}, req)
	if problems != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", problems)
	}

	if err := h.planRepo.Create(enrollment); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create enrollment", err)
	}

	return utils.CreatedResponse(c, "Enrollment created successfully", enrollment)
}

func (h *PlanHandler) UpdateEnrollment(c *fiber.Ctx) error {
	enrollmentID, err := strconv.Atoi(c.Params("enrollmentId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid enrollment ID", err)
	}

	var req models.EnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	enrollment, err := h.planRepo.FindByID(enrollmentID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", err)
	}

	enrollment, problems := buildEnrollment(enrollment, req)
	if problems != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", problems)
	}

	if err := h.planRepo.Update(enrollment); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update enrollment", err)
	}

	return utils.SuccessResponse(c, "Enrollment updated successfully", enrollment)
}

// CloseEnrollment ends an enrollment; the record stays for history.
func (h *PlanHandler) CloseEnrollment(c *fiber.Ctx) error {
	enrollmentID, err := strconv.Atoi(c.Params("enrollmentId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid enrollment ID", err)
	}

	if _, err := h.planRepo.FindByID(enrollmentID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", err)
	}

	if err := h.planRepo.Close(enrollmentID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to close enrollment", err)
	}

	return utils.SuccessResponse(c, "Enrollment closed successfully", nil)
}

// GetVisits lists an employee's co-participation statement lines with
// the per-enrollment billed and co-paid totals.
func (h *PlanHandler) GetVisits(c *fiber.Ctx) error {
	employeeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	visits, err := h.planRepo.FindVisitsByEmployee(employeeID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve visits", err)
	}

	totals, err := h.planRepo.VisitTotalsByEmployee(employeeID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve visit totals", err)
	}

	return utils.SuccessResponse(c, "Visits retrieved successfully", fiber.Map{
		"visits": visits,
		"totals": totals,
	})
}

func (h *PlanHandler) CreateVisit(c *fiber.Ctx) error {
	employeeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	var req models.CopayVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	enrollment, err := h.planRepo.FindByID(req.EnrollmentID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", err)
	}
	if enrollment.EmployeeID != employeeID {
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity,
			"Enrollment does not belong to this employee", nil)
	}

	visit, problems := buildVisit(enrollment, req)
	if problems != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", problems)
	}

	if err := h.planRepo.CreateVisit(visit); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record visit", err)
	}

	return utils.CreatedResponse(c, "Visit recorded successfully", visit)
}

func buildEnrollment(enrollment *models.PlanEnrollment, req models.EnrollmentRequest) (*models.PlanEnrollment, fiber.Map) {
	problems := fiber.Map{}

	enrollment.Kind = req.Kind
	enrollment.Operator = req.Operator
	enrollment.PlanName = req.PlanName
	enrollment.LinkedCode = req.LinkedCode
	enrollment.CompanyCode = req.CompanyCode

	if req.Contract != "" {
		enrollment.Contract = sql.NullString{String: req.Contract, Valid: true}
	}

	if req.CopayType != "" {
		enrollment.CopayType = req.CopayType
	} else if enrollment.CopayType == "" {
		enrollment.CopayType = models.CopayTypeMonthly
	}

	startDate, fieldErr := service.CleanDate(req.StartDate)
	if fieldErr != nil || startDate.IsZero() {
		problems["start_date"] = "a valid start date is required"
	} else {
		enrollment.StartDate = startDate
	}

	if req.MonthlyValue != "" {
		value, fieldErr := service.CleanMoney(req.MonthlyValue)
		if fieldErr != nil {
			problems["monthly_value"] = fieldErr.Message
		} else {
			enrollment.MonthlyValue = decimal.NullDecimal{Decimal: value, Valid: true}
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return enrollment, nil
}

// buildVisit assembles a statement line against an enrollment. Contract
// and registration code default to what the enrollment carries, since
// operator statements repeat them on every line.
func buildVisit(enrollment *models.PlanEnrollment, req models.CopayVisitRequest) (*models.CopayVisit, fiber.Map) {
	problems := fiber.Map{}

	visit := &models.CopayVisit{
		EnrollmentID:     enrollment.ID,
		EmployeeID:       enrollment.EmployeeID,
		Competence:       req.Competence,
		Beneficiary:      strings.TrimSpace(req.Beneficiary),
		RegistrationCode: enrollment.LinkedCode,
		Contract:         enrollment.Contract,
		Quantity:         decimal.NewFromInt(1),
	}

	if req.Contract != "" {
		visit.Contract = sql.NullString{String: req.Contract, Valid: true}
	}
	if req.Guide != "" {
		visit.Guide = sql.NullString{String: req.Guide, Valid: true}
	}
	if req.Description != "" {
		visit.Description = sql.NullString{String: strings.TrimSpace(req.Description), Valid: true}
	}

	if req.NationalID != "" {
		nationalID, fieldErr := service.CleanNationalID(req.NationalID)
		if fieldErr != nil {
			problems["national_id"] = fieldErr.Message
		} else {
			visit.NationalID = sql.NullString{String: nationalID, Valid: true}
		}
	}

	visitDate, fieldErr := service.CleanDate(req.VisitDate)
	if fieldErr != nil || visitDate.IsZero() {
		problems["visit_date"] = "a valid visit date is required"
	} else {
		visit.VisitDate = visitDate
	}

	if req.Quantity != "" {
		quantity, fieldErr := service.CleanMoney(req.Quantity)
		if fieldErr != nil || !quantity.IsPositive() {
			problems["quantity"] = "quantity must be a positive number"
		} else {
			visit.Quantity = quantity
		}
	}

	if req.BaseValue != "" {
		baseValue, fieldErr := service.CleanMoney(req.BaseValue)
		if fieldErr != nil {
			problems["base_value"] = fieldErr.Message
		} else {
			visit.BaseValue = decimal.NullDecimal{Decimal: baseValue, Valid: true}
		}
	}

	copayValue, fieldErr := service.CleanMoney(req.CopayValue)
	if fieldErr != nil {
		problems["copay_value"] = fieldErr.Message
	} else {
		visit.CopayValue = copayValue
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return visit, nil
}
