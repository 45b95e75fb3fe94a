package model

import (
	"time"

	"gorm.io/gorm"
)

// Organization is the root of the ownership tree. Authors of an organization
// hold write authority over everything it owns.
type Organization struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Chains []Chain `json:"chains,omitempty" gorm:"foreignKey:OrganizationID"`
}

// Chain belongs to exactly one organization
type Chain struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"type:varchar(255);not null"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Restaurants  []Restaurant `json:"restaurants,omitempty" gorm:"foreignKey:ChainID"`
}

// Restaurant belongs to exactly one chain; its owning organization is
// chain.organization.
type Restaurant struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	ChainID   uint           `json:"chain_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Chain Chain `json:"chain,omitempty" gorm:"foreignKey:ChainID;constraint:OnDelete:CASCADE"`
}
