package model

import (
	"time"

	"gorm.io/gorm"
)

// Category is a menu category. It can be attached to restaurants owned by
// different organizations; mutating a shared category requires authorship in
// every one of them.
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Restaurants []Restaurant `json:"restaurants,omitempty" gorm:"many2many:category_restaurants;"`
}

// Kitchen is a cuisine tag, scoped to restaurants the same way categories are
type Kitchen struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Restaurants []Restaurant `json:"restaurants,omitempty" gorm:"many2many:kitchen_restaurants;"`
}

// CategoryRestaurant is the category↔restaurant scope edge
type CategoryRestaurant struct {
	CategoryID   uint `json:"category_id" gorm:"primaryKey"`
	RestaurantID uint `json:"restaurant_id" gorm:"primaryKey"`
}

// TableName keeps the edge table shared with the many2many relation above
func (CategoryRestaurant) TableName() string {
	return "category_restaurants"
}

// KitchenRestaurant is the kitchen↔restaurant scope edge
type KitchenRestaurant struct {
	KitchenID    uint `json:"kitchen_id" gorm:"primaryKey"`
	RestaurantID uint `json:"restaurant_id" gorm:"primaryKey"`
}

// TableName keeps the edge table shared with the many2many relation above
func (KitchenRestaurant) TableName() string {
	return "kitchen_restaurants"
}

// Product is a menu item. Count is optional stock; when tracked and it drops
// below one the product is stopped.
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"not null"`
	Count       *int           `json:"count,omitempty"`
	Stop        bool           `json:"stop" gorm:"default:false"`
	CategoryID  uint           `json:"category_id" gorm:"index;not null"`
	KitchenID   uint           `json:"kitchen_id" gorm:"index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Category    Category     `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Kitchen     Kitchen      `json:"kitchen,omitempty" gorm:"foreignKey:KitchenID;constraint:OnDelete:CASCADE"`
	Restaurants []Restaurant `json:"restaurants,omitempty" gorm:"many2many:product_restaurants;"`
}

// ProductRestaurant is the product↔restaurant scope edge
type ProductRestaurant struct {
	ProductID    uint `json:"product_id" gorm:"primaryKey"`
	RestaurantID uint `json:"restaurant_id" gorm:"primaryKey"`
}

// TableName keeps the edge table shared with the many2many relation above
func (ProductRestaurant) TableName() string {
	return "product_restaurants"
}

// BeforeSave derives the stop flag from the tracked stock count
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Count != nil && *p.Count < 1 {
		p.Stop = true
	}
	return nil
}

// Ingredient holds per-restaurant stock of a raw ingredient
type Ingredient struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	RestaurantID uint           `json:"restaurant_id" gorm:"index;not null"`
	Count        float64        `json:"count" gorm:"default:0"`
	Measure      string         `json:"measure" gorm:"type:varchar(50)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Restaurant Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
}

// Recipe links a product to an ingredient with a quantity (bill of materials)
type Recipe struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	ProductID    uint           `json:"product_id" gorm:"uniqueIndex:idx_recipe_edge;not null"`
	IngredientID uint           `json:"ingredient_id" gorm:"uniqueIndex:idx_recipe_edge;not null"`
	Quantity     float64        `json:"quantity" gorm:"not null"`
	Measure      string         `json:"measure" gorm:"type:varchar(50)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Product    Product    `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Ingredient Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

// AllModels lists every model for AutoMigrate, parents before children
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&Chain{},
		&Restaurant{},
		&OrganizationAuthor{},
		&OrganizationMember{},
		&ChainMember{},
		&RestaurantMember{},
		&Category{},
		&Kitchen{},
		&CategoryRestaurant{},
		&KitchenRestaurant{},
		&Product{},
		&ProductRestaurant{},
		&Ingredient{},
		&Recipe{},
	}
}
