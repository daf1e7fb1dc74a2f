package models

import "time"

// Category is the top level of the catalog tree. It owns zero or more Types.
type Category struct {
	ID           uint      `gorm:"primaryKey"`
	CategoryName string    `gorm:"size:255;uniqueIndex;not null"`
	Types        []Type    `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (c *Category) TableName() string {
	return "categories"
}

// Type groups products inside a Category.
type Type struct {
	ID         uint      `gorm:"primaryKey"`
	TypeName   string    `gorm:"size:255;not null"`
	CategoryID uint      `gorm:"not null;index"`
	Category   Category  `gorm:"foreignKey:CategoryID"`
	Products   []Product `gorm:"foreignKey:TypeID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t *Type) TableName() string {
	return "types"
}
