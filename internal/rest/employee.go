package rest

import (
	"context"
	"net/http"
	"time"

	"garmentFactory/business/employee"
	"garmentFactory/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type EmployeeService interface {
	CreateEmployee(ctx context.Context, input employee.EmployeeInput) (domain.Employee, error)
	GetEmployee(ctx context.Context, id uint) (domain.Employee, error)
	ListEmployees(ctx context.Context, department, status string) ([]domain.Employee, error)
	UpdateEmployee(ctx context.Context, id uint, input employee.EmployeeInput) (domain.Employee, error)
	DeleteEmployee(ctx context.Context, id uint) error
}

type EmployeeHandler struct {
	employeeService EmployeeService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewEmployeeHandler(employeeService EmployeeService, timeout time.Duration) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		validator:       validator.New(),
		timeout:         timeout,
	}
}

func (h *EmployeeHandler) GetAllEmployees(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	employees, err := h.employeeService.ListEmployees(ctx, c.QueryParam("department"), c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"employees": employees,
	})
}

func (h *EmployeeHandler) GetEmployeeByID(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	emp, err := h.employeeService.GetEmployee(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"employee": emp,
	})
}

func (h *EmployeeHandler) CreateEmployee(c echo.Context) error {
	var req employee.EmployeeInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	emp, err := h.employeeService.CreateEmployee(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusCreated, "Employee added", map[string]any{
		"employee": emp,
	})
}

func (h *EmployeeHandler) UpdateEmployee(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req employee.EmployeeInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	emp, err := h.employeeService.UpdateEmployee(ctx, id, req)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Employee updated", map[string]any{
		"employee": emp,
	})
}

func (h *EmployeeHandler) DeleteEmployee(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.employeeService.DeleteEmployee(ctx, id); err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Employee deleted", nil)
}
