package models

import (
	"regexp"
	"time"
)

// Product represents a product in the catalog.
// Every descriptive attribute is optional and stored as NULL when unset.
type Product struct {
	ID             uint    `gorm:"primaryKey"`
	ProductName    string  `gorm:"size:255;uniqueIndex;not null"`
	ThroatStandard *string `gorm:"size:255"`
	ThroatDiameter *int
	PackageVolume  *int
	Dimensions     *string `gorm:"size:255"`
	Compound       *string `gorm:"size:255"`
	Material       *string `gorm:"size:255"`
	Package        *string `gorm:"size:255"`
	Weight         *int
	Application    *string `gorm:"size:255"`
	Description    *string `gorm:"type:text"`
	InStock        bool    `gorm:"not null"`
	ArticleNumber  *string `gorm:"size:50;uniqueIndex"`

	TypeID uint `gorm:"not null;index"`
	Type   Type `gorm:"foreignKey:TypeID"`

	Colors []ProductColor `gorm:"many2many:product_colors;"`
	Images []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`
}

func (p *Product) TableName() string {
	return "products"
}

// ProductColor is a hex color value shared by any number of products.
type ProductColor struct {
	ID    uint   `gorm:"primaryKey"`
	Color string `gorm:"size:7;uniqueIndex;not null"`
}

func (c *ProductColor) TableName() string {
	return "colors"
}

// ProductImage references a stored image object owned by one product.
type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	Image     string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

func (i *ProductImage) TableName() string {
	return "product_images"
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether c is a #RRGGBB hex color.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}
