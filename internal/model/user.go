package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered participant or an administrator.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName     string    `json:"full_name" gorm:"size:100;not null"`
	Phone        string    `json:"phone" gorm:"size:32"`
	College      string    `json:"college" gorm:"size:200"`
	YearOfStudy  string    `json:"year_of_study" gorm:"size:16"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false;index"`
	PasswordHash string    `json:"-" gorm:"size:255"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SignupProfile carries the fields a participant provides when registering.
type SignupProfile struct {
	Email       string
	Password    string
	FullName    string
	Phone       string
	College     string
	YearOfStudy string
}
