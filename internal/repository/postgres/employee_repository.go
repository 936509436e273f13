package postgres

import (
	"context"
	"errors"
	"fmt"

	"garmentFactory/domain"

	"gorm.io/gorm"
)

type EmployeeRepository struct {
	DB *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{
		DB: db,
	}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	if err := r.DB.WithContext(ctx).Create(employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("employee id %s already exists: %w", employee.EmployeeID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id uint) (domain.Employee, error) {
	var employee domain.Employee

	err := r.DB.WithContext(ctx).First(&employee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Employee{}, fmt.Errorf("employee %d: %w", id, domain.ErrNotFound)
		}
		return domain.Employee{}, fmt.Errorf("failed to find employee: %w", err)
	}

	return employee, nil
}

func (r *EmployeeRepository) FindAll(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	q := r.DB.WithContext(ctx)
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var employees []domain.Employee
	if err := q.Order("employee_id ASC").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to find employees: %w", err)
	}

	return employees, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	res := r.DB.WithContext(ctx).Model(&domain.Employee{}).Where("id = ?", employee.ID).
		Select("employee_id", "name", "email", "date", "attend_time", "leave_time", "department", "position", "status", "updated_at").
		Updates(employee)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("employee id %s already exists: %w", employee.EmployeeID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to update employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("employee %d: %w", employee.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&domain.Employee{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("employee %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
