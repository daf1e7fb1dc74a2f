package api

import (
	"time"

	"github.com/packline/catalog/models"
)

type Category struct {
	ID           uint      `json:"id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewCategory(c models.Category) Category {
	return Category{
		ID:           c.ID,
		CategoryName: c.CategoryName,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type Type struct {
	ID        uint      `json:"id"`
	TypeName  string    `json:"type_name"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewType(t models.Type) Type {
	return Type{
		ID:        t.ID,
		TypeName:  t.TypeName,
		Category:  NewCategory(t.Category),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// CategoryRef is the short category shape embedded in a product.
type CategoryRef struct {
	ID           uint   `json:"id"`
	CategoryName string `json:"category_name"`
}

type Color struct {
	Color string `json:"color"`
}

type ImageRef struct {
	ID       uint   `json:"id"`
	ImageURL string `json:"image_url"`
}

type Product struct {
	ID             uint         `json:"id"`
	ProductName    string       `json:"product_name"`
	ThroatStandard *string      `json:"throat_standard"`
	ThroatDiameter *int         `json:"throat_diameter"`
	PackageVolume  *int         `json:"package_volume"`
	Dimensions     *string      `json:"dimensions"`
	Compound       *string      `json:"compound"`
	Colors         []Color      `json:"colors"`
	Material       *string      `json:"material"`
	Package        *string      `json:"package"`
	Weight         *int         `json:"weight"`
	Application    *string      `json:"application"`
	Description    *string      `json:"description"`
	Images         []ImageRef   `json:"images"`
	Type           Type         `json:"type"`
	Category       *CategoryRef `json:"category"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	InStock        bool         `json:"in_stock"`
	ArticleNumber  *string      `json:"article_number"`
}

// URLFunc turns a stored image key into a public URL.
type URLFunc func(key string) string

func NewProduct(p models.Product, url URLFunc) Product {
	colors := make([]Color, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = Color{Color: c.Color}
	}
	images := make([]ImageRef, len(p.Images))
	for i, img := range p.Images {
		images[i] = ImageRef{ID: img.ID, ImageURL: url(img.Image)}
	}

	var category *CategoryRef
	if p.Type.Category.ID != 0 {
		category = &CategoryRef{ID: p.Type.Category.ID, CategoryName: p.Type.Category.CategoryName}
	}

	return Product{
		ID:             p.ID,
		ProductName:    p.ProductName,
		ThroatStandard: p.ThroatStandard,
		ThroatDiameter: p.ThroatDiameter,
		PackageVolume:  p.PackageVolume,
		Dimensions:     p.Dimensions,
		Compound:       p.Compound,
		Colors:         colors,
		Material:       p.Material,
		Package:        p.Package,
		Weight:         p.Weight,
		Application:    p.Application,
		Description:    p.Description,
		Images:         images,
		Type:           NewType(p.Type),
		Category:       category,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		InStock:        p.InStock,
		ArticleNumber:  p.ArticleNumber,
	}
}

type Image struct {
	ID        uint      `json:"id"`
	Product   uint      `json:"product"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewImage(img models.ProductImage, url URLFunc) Image {
	return Image{
		ID:        img.ID,
		Product:   img.ProductID,
		ImageURL:  url(img.Image),
		CreatedAt: img.CreatedAt,
	}
}
