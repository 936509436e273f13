package domain

import (
	"strings"
	"time"
)

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "Active"
	EmployeeInactive EmployeeStatus = "Inactive"
	EmployeeOnLeave  EmployeeStatus = "On Leave"
)

func ParseEmployeeStatus(s string) (EmployeeStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range []EmployeeStatus{EmployeeActive, EmployeeInactive, EmployeeOnLeave} {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

type Employee struct {
	ID         uint           `gorm:"primaryKey" json:"_id"`
	EmployeeID string         `gorm:"column:employee_id;uniqueIndex;not null" json:"employeeId"`
	Name       string         `gorm:"column:name;not null" json:"name"`
	Email      string         `gorm:"column:email;not null" json:"email"`
	Date       time.Time      `gorm:"column:date;type:date" json:"date"`
	AttendTime string         `gorm:"column:attend_time;type:text" json:"attendTime"`
	LeaveTime  string         `gorm:"column:leave_time;type:text" json:"leaveTime"`
	Department string         `gorm:"column:department;index" json:"department"`
	Position   string         `gorm:"column:position" json:"position"`
	Status     EmployeeStatus `gorm:"column:status;type:text;default:Active" json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (Employee) TableName() string {
	return "employees"
}

type EmployeeFilter struct {
	Department string
	Status     EmployeeStatus
}
