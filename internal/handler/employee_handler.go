package handler

import (
	"database/sql"
	"strconv"
	"time"

	"benefits-web/internal/config"
	"benefits-web/internal/models"
	"benefits-web/internal/repository"
	"benefits-web/internal/service"
	"benefits-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type EmployeeHandler struct {
	employeeRepo *repository.EmployeeRepository
	planRepo     *repository.PlanRepository
	cfg          *config.Config
}

func NewEmployeeHandler(employeeRepo *repository.EmployeeRepository, planRepo *repository.PlanRepository, cfg *config.Config) *EmployeeHandler {
	return &EmployeeHandler{
		employeeRepo: employeeRepo,
		planRepo:     planRepo,
		cfg:          cfg,
	}
}

func (h *EmployeeHandler) GetEmployees(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	includeDeleted := c.QueryBool("include_deleted", false)

	employees, total, err := h.employeeRepo.FindAll(params.Limit, offset, params.Search, includeDeleted)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve employees", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"employees":  employees,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Employees retrieved successfully", responseData, pagination)
}

func (h *EmployeeHandler) GetEmployee(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	employee, err := h.employeeRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", err)
	}

	activeCode, _ := h.employeeRepo.ActiveCode(id)
	dependents, _ := h.employeeRepo.ListDependents(id)
	enrollments, _ := h.planRepo.FindByEmployee(id)

	return utils.SuccessResponse(c, "Employee retrieved successfully", fiber.Map{
		"employee":    employee,
		"active_code": activeCode,
		"dependents":  dependents,
		"enrollments": enrollments,
	})
}

func (h *EmployeeHandler) CreateEmployee(c *fiber.Ctx) error {
	var req models.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	employee, fieldErrs := h.buildEmployee(&models.Employee{}, req)
	if fieldErrs != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", fieldErrs)
	}

	if existing, _ := h.employeeRepo.FindByNationalID(employee.NationalID); existing != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "An employee with this national ID already exists", nil)
	}

	if err := h.employeeRepo.Create(employee); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create employee", err)
	}

	if req.RegistrationCode != "" {
		code, fieldErr := service.CleanRegistrationCode(req.RegistrationCode)
		if fieldErr != nil {
			return utils.ValidationErrorResponse(c, "Validation failed", fiber.Map{"registration_code": fieldErr.Message})
		}
		if err := h.employeeRepo.AssignCode(employee.ID, code, req.CompanyCode, time.Now(), "manual entry"); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Employee created but code assignment failed", err)
		}
	}

	return utils.CreatedResponse(c, "Employee created successfully", employee)
}

func (h *EmployeeHandler) UpdateEmployee(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	var req models.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	employee, err := h.employeeRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", err)
	}

	employee, fieldErrs := h.buildEmployee(employee, req)
	if fieldErrs != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", fieldErrs)
	}

	if err := h.employeeRepo.Update(employee); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update employee", err)
	}

	return utils.SuccessResponse(c, "Employee updated successfully", employee)
}

// DeleteEmployee terminates an employee: the record is kept, its
// registration codes are closed and its dependents flagged for review.
func (h *EmployeeHandler) DeleteEmployee(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	var req models.SoftDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	if _, err := h.employeeRepo.FindByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", err)
	}

	if err := h.employeeRepo.SoftDelete(id, req.Reason); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to terminate employee", err)
	}

	return utils.SuccessResponse(c, "Employee terminated successfully", nil)
}

func (h *EmployeeHandler) RestoreEmployee(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	if err := h.employeeRepo.Restore(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to restore employee", err)
	}

	employee, err := h.employeeRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", err)
	}

	return utils.SuccessResponse(c, "Employee restored successfully", employee)
}

func (h *EmployeeHandler) GetCodeHistory(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	history, err := h.employeeRepo.CodeHistory(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve code history", err)
	}

	return utils.SuccessResponse(c, "Code history retrieved successfully", history)
}

func (h *EmployeeHandler) AssignCode(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	var req models.AssignCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	code, fieldErr := service.CleanRegistrationCode(req.Code)
	if fieldErr != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", fiber.Map{"code": fieldErr.Message})
	}

	if _, ok := h.cfg.CompanyCodes[req.CompanyCode]; !ok {
		return utils.ValidationErrorResponse(c, "Validation failed", fiber.Map{"company_code": "unknown company code"})
	}

	startDate := time.Now()
	if req.StartDate != "" {
		parsed, fieldErr := service.CleanDate(req.StartDate)
		if fieldErr != nil {
			return utils.ValidationErrorResponse(c, "Validation failed", fiber.Map{"start_date": fieldErr.Message})
		}
		if !parsed.IsZero() {
			startDate = parsed
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual assignment"
	}

	if err := h.employeeRepo.AssignCode(id, code, req.CompanyCode, startDate, reason); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign registration code", err)
	}

	active, err := h.employeeRepo.ActiveCode(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load active code", err)
	}

	return utils.SuccessResponse(c, "Registration code assigned successfully", active)
}

func (h *EmployeeHandler) GetDependents(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	dependents, err := h.employeeRepo.ListDependents(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve dependents", err)
	}

	return utils.SuccessResponse(c, "Dependents retrieved successfully", dependents)
}

func (h *EmployeeHandler) CreateDependent(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}

	var req models.DependentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	if _, err := h.employeeRepo.FindByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Employee not found", err)
	}

	dependent, fieldErrs := buildDependent(&models.Dependent{EmployeeID: id}, req)
	if fieldErrs != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", fieldErrs)
	}

	if err := h.employeeRepo.CreateDependent(dependent); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create dependent", err)
	}

	return utils.CreatedResponse(c, "Dependent created successfully", dependent)
}

func (h *EmployeeHandler) UpdateDependent(c *fiber.Ctx) error {
	employeeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid employee ID", err)
	}
	dependentID, err := strconv.Atoi(c.Params("dependentId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid dependent ID", err)
	}

	var req models.DependentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if violations := validateStruct(req); violations != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", violations)
	}

	dependents, err := h.employeeRepo.ListDependents(employeeID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve dependents", err)
	}

	var current *models.Dependent
	for i := range dependents {
		if dependents[i].ID == dependentID {
			current = &dependents[i]
			break
		}
	}
	if current == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Dependent not found", nil)
	}

	dependent, fieldErrs := buildDependent(current, req)
	if fieldErrs != nil {
		return utils.ValidationErrorResponse(c, "Validation failed", fieldErrs)
	}

	if err := h.employeeRepo.UpdateDependent(dependent); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update dependent", err)
	}

	return utils.SuccessResponse(c, "Dependent updated successfully", dependent)
}

func (h *EmployeeHandler) DeleteDependent(c *fiber.Ctx) error {
	dependentID, err := strconv.Atoi(c.Params("dependentId"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid dependent ID", err)
	}

	if err := h.employeeRepo.DeleteDependent(dependentID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete dependent", err)
	}

	return utils.SuccessResponse(c, "Dependent deleted successfully", nil)
}

// buildEmployee maps the request onto the record, running the same
// field validators imported rows go through.
func (h *EmployeeHandler) buildEmployee(employee *models.Employee, req models.EmployeeRequest) (*models.Employee, fiber.Map) {
	problems := fiber.Map{}

	nationalID, fieldErr := service.CleanNationalID(req.NationalID)
	if fieldErr != nil {
		problems["national_id"] = fieldErr.Message
	} else {
		employee.NationalID = nationalID
	}

	employee.Name = service.CleanName(req.Name)

	if req.Email != "" {
		email, fieldErr := service.CleanEmail(req.Email)
		if fieldErr != nil {
			problems["email"] = fieldErr.Message
		} else {
			employee.Email = sql.NullString{String: email, Valid: true}
		}
	}

	if req.Phone != "" {
		phone, fieldErr := service.CleanPhone(req.Phone)
		if fieldErr != nil {
			problems["phone"] = fieldErr.Message
		} else {
			employee.Phone = sql.NullString{String: phone, Valid: true}
		}
	}

	if req.HireDate != "" {
		hireDate, fieldErr := service.CleanDate(req.HireDate)
		if fieldErr != nil {
			problems["hire_date"] = fieldErr.Message
		} else if !hireDate.IsZero() {
			employee.HireDate = sql.NullTime{Time: hireDate, Valid: true}
		}
	}

	if req.BirthDate != "" {
		birthDate, fieldErr := service.CleanDate(req.BirthDate)
		if fieldErr != nil {
			problems["birth_date"] = fieldErr.Message
		} else if !birthDate.IsZero() {
			employee.BirthDate = sql.NullTime{Time: birthDate, Valid: true}
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return employee, nil
}

func buildDependent(dependent *models.Dependent, req models.DependentRequest) (*models.Dependent, fiber.Map) {
	problems := fiber.Map{}

	dependent.Name = service.CleanName(req.Name)
	dependent.LinkedCode = req.LinkedCode

	if req.NationalID != "" {
		nationalID, fieldErr := service.CleanNationalID(req.NationalID)
		if fieldErr != nil {
			problems["national_id"] = fieldErr.Message
		} else {
			dependent.NationalID = sql.NullString{String: nationalID, Valid: true}
		}
	}

	if req.BirthDate != "" {
		birthDate, fieldErr := service.CleanDate(req.BirthDate)
		if fieldErr != nil {
			problems["birth_date"] = fieldErr.Message
		} else if !birthDate.IsZero() {
			dependent.BirthDate = sql.NullTime{Time: birthDate, Valid: true}
		}
	}

	if req.Relationship != "" {
		dependent.Relationship = sql.NullString{String: req.Relationship, Valid: true}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return dependent, nil
}
