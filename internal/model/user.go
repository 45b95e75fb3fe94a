package model

import (
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// User represents the user model stored in the database
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	Code      *int           `json:"code,omitempty" gorm:"uniqueIndex"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns the six-digit login code. The code is immutable once
// set; it is only generated when absent, re-rolling on collision.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Code != nil {
		return nil
	}

	for {
		code := rand.Intn(900000) + 100000
		var count int64
		if err := tx.Model(&User{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			u.Code = &code
			return nil
		}
	}
}
