package model

import (
	"time"
)

// OrganizationAuthor is the authorship edge between a user and an
// organization. Authorship exists only at the organization level; every
// lower-level write check walks up to this table.
type OrganizationAuthor struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrganizationID uint      `json:"organization_id" gorm:"uniqueIndex:idx_org_author;not null"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex:idx_org_author;not null"`
	CreatedAt      time.Time `json:"created_at"`

	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	User         User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// OrganizationMember is the plain membership edge between a user and an
// organization. Membership carries no write authority.
type OrganizationMember struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrganizationID uint      `json:"organization_id" gorm:"uniqueIndex:idx_org_member;not null"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex:idx_org_member;not null"`
	CreatedAt      time.Time `json:"created_at"`

	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	User         User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// ChainMember is the plain membership edge between a user and a chain
type ChainMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChainID   uint      `json:"chain_id" gorm:"uniqueIndex:idx_chain_member;not null"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_chain_member;not null"`
	CreatedAt time.Time `json:"created_at"`

	Chain Chain `json:"chain,omitempty" gorm:"foreignKey:ChainID;constraint:OnDelete:CASCADE"`
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// RestaurantMember is the plain membership edge between a user and a restaurant
type RestaurantMember struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"uniqueIndex:idx_restaurant_member;not null"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex:idx_restaurant_member;not null"`
	CreatedAt    time.Time `json:"created_at"`

	Restaurant Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	User       User       `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
