package domain

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                uint           `gorm:"primaryKey" json:"_id"`
	Name              string         `gorm:"column:name;not null" json:"name"`
	Email             string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	IsAccountVerified bool           `gorm:"column:is_account_verified;default:false" json:"isAccountVerified"`
	Password          string         `gorm:"column:password;not null" json:"-"`
	Role              Role           `gorm:"column:role;type:text;default:user" json:"role"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
