package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`
	Role         UserRole       `gorm:"type:varchar(20);default:'seller'" json:"role"`
	IsActive     bool           `gorm:"default:true;not null" json:"is_active"` // selling capability switch
	KYCVerified  bool           `gorm:"default:false;not null" json:"kyc_verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Submission *KYCSubmission `gorm:"foreignKey:UserID" json:"submission,omitempty"`
}

func (User) TableName() string {
	return "users"
}
