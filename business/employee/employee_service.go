package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garmentFactory/domain"
	"garmentFactory/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	FindByID(ctx context.Context, id uint) (domain.Employee, error)
	FindAll(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id uint) error
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

type EmployeeInput struct {
	EmployeeID string `json:"employeeId" validate:"required,max=32"`
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Date       string `json:"date" validate:"required"`
	AttendTime string `json:"attendTime" validate:"required"`
	LeaveTime  string `json:"leaveTime" validate:"required"`
	Department string `json:"department" validate:"required"`
	Position   string `json:"position" validate:"required"`
	Status     string `json:"status"`
}

type employeeService struct {
	employeeRepo EmployeeRepository
	validate     *validator.Validate
}

func NewEmployeeService(employeeRepo EmployeeRepository, validate *validator.Validate) *employeeService {
	return &employeeService{
		employeeRepo: employeeRepo,
		validate:     validate,
	}
}

// toEmployee validates the input and converts it. Times are HH:MM and the shift must
// end after it starts.
func (s *employeeService) toEmployee(input EmployeeInput) (domain.Employee, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Employee{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}

	attend, err := time.Parse(clockLayout, input.AttendTime)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("%w: attendTime must be HH:MM", domain.ErrValidation)
	}
	leave, err := time.Parse(clockLayout, input.LeaveTime)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("%w: leaveTime must be HH:MM", domain.ErrValidation)
	}
	if !leave.After(attend) {
		return domain.Employee{}, fmt.Errorf("%w: leaveTime must be after attendTime", domain.ErrValidation)
	}

	status := domain.EmployeeActive
	if input.Status != "" {
		var ok bool
		if status, ok = domain.ParseEmployeeStatus(input.Status); !ok {
			return domain.Employee{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.Status)
		}
	}

	return domain.Employee{
		EmployeeID: strings.TrimSpace(input.EmployeeID),
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Date:       date,
		AttendTime: attend.Format(clockLayout),
		LeaveTime:  leave.Format(clockLayout),
		Department: strings.TrimSpace(input.Department),
		Position:   strings.TrimSpace(input.Position),
		Status:     status,
	}, nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, input EmployeeInput) (domain.Employee, error) {
	employee, err := s.toEmployee(input)
	if err != nil {
		return domain.Employee{}, err
	}

	if err := s.employeeRepo.Create(ctx, &employee); err != nil {
		logger.Error("Failed to create employee", err)
		return domain.Employee{}, err
	}

	return employee, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id uint) (domain.Employee, error) {
	return s.employeeRepo.FindByID(ctx, id)
}

func (s *employeeService) ListEmployees(ctx context.Context, department, status string) ([]domain.Employee, error) {
	filter := domain.EmployeeFilter{Department: strings.TrimSpace(department)}
	if status != "" {
		st, ok := domain.ParseEmployeeStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
		}
		filter.Status = st
	}

	employees, err := s.employeeRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to list employees", err)
		return nil, err
	}
	if employees == nil {
		employees = []domain.Employee{}
	}

	return employees, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, id uint, input EmployeeInput) (domain.Employee, error) {
	existing, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}

	updated, err := s.toEmployee(input)
	if err != nil {
		return domain.Employee{}, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	if err := s.employeeRepo.Update(ctx, &updated); err != nil {
		logger.Error("Failed to update employee", err)
		return domain.Employee{}, err
	}

	return updated, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id uint) error {
	return s.employeeRepo.Delete(ctx, id)
}
