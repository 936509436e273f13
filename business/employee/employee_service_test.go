package employee

import (
	"context"
	"testing"

	"garmentFactory/domain"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	return m.Called(ctx, employee).Error(0)
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id uint) (domain.Employee, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindAll(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return m.Called(ctx, employee).Error(0)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func validEmployee() EmployeeInput {
	return EmployeeInput{
		EmployeeID: "EMP-001",
		Name:       "Rahim Uddin",
		Email:      "Rahim@Factory.test",
		Date:       "2024-03-01",
		AttendTime: "08:00",
		LeaveTime:  "17:30",
		Department: "Cutting",
		Position:   "Supervisor",
	}
}

func TestCreateEmployee(t *testing.T) {
	repo := new(MockEmployeeRepository)
	svc := NewEmployeeService(repo, validator.New())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Employee")).Return(nil)

	emp, err := svc.CreateEmployee(ctx, validEmployee())
	require.NoError(t, err)
	assert.Equal(t, "rahim@factory.test", emp.Email)
	assert.Equal(t, domain.EmployeeActive, emp.Status)
	assert.Equal(t, 2024, emp.Date.Year())
	assert.Equal(t, "17:30", emp.LeaveTime)
}

func TestCreateEmployee_Invalid(t *testing.T) {
	repo := new(MockEmployeeRepository)
	svc := NewEmployeeService(repo, validator.New())
	ctx := context.Background()

	cases := map[string]func(*EmployeeInput){
		"bad email":        func(in *EmployeeInput) { in.Email = "rahim" },
		"bad date":         func(in *EmployeeInput) { in.Date = "01/03/2024" },
		"bad clock":        func(in *EmployeeInput) { in.AttendTime = "8am" },
		"leave before in":  func(in *EmployeeInput) { in.LeaveTime = "07:00" },
		"unknown status":   func(in *EmployeeInput) { in.Status = "Retired" },
		"missing position": func(in *EmployeeInput) { in.Position = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validEmployee()
			mutate(&in)
			_, err := svc.CreateEmployee(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListEmployees_Filter(t *testing.T) {
	repo := new(MockEmployeeRepository)
	svc := NewEmployeeService(repo, validator.New())
	ctx := context.Background()

	repo.On("FindAll", ctx, domain.EmployeeFilter{Department: "Sewing", Status: domain.EmployeeOnLeave}).
		Return([]domain.Employee{{EmployeeID: "EMP-9"}}, nil)

	list, err := svc.ListEmployees(ctx, "Sewing", "on leave")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListEmployees(ctx, "", "Fired")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateEmployee_NotFound(t *testing.T) {
	repo := new(MockEmployeeRepository)
	svc := NewEmployeeService(repo, validator.New())
	ctx := context.Background()

	repo.On("FindByID", ctx, uint(4)).Return(domain.Employee{}, domain.ErrNotFound)

	_, err := svc.UpdateEmployee(ctx, 4, validEmployee())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
