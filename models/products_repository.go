package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func preloadProduct(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Type.Category").
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("colors.id") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("product_images.id") })
}

// GetFilteredProducts filters, orders and pages the product collection.
func (r *ProductsRepository) GetFilteredProducts(q ProductQuery) ([]Product, Page, error) {
	filters := q.Filters()

	var total int64
	if err := r.db.Model(&Product{}).Scopes(filters...).Count(&total).Error; err != nil {
		return nil, Page{}, err
	}

	page := Paginate(total, q.Page, q.PageSize)

	var products []Product
	if err := r.db.Model(&Product{}).
		Scopes(filters...).
		Scopes(q.Ordering(), preloadProduct).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&products).Error; err != nil {
		return nil, Page{}, err
	}

	return products, page, nil
}

func (r *ProductsRepository) GetByID(id uint) (*Product, error) {
	var product Product
	if err := r.db.Scopes(preloadProduct).First(&product, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

// CreateProduct validates the payload and inserts the product with its
// colors in one transaction.
func (r *ProductsRepository) CreateProduct(in ProductInput) (*Product, error) {
	var product Product
	product.InStock = true

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := validateProduct(tx, in, 0, true); err != nil {
			return err
		}
		applyProductInput(&product, in)
		if err := duplicate(tx.Omit(clause.Associations).Create(&product).Error, "non_field_errors", msgProductConflict); err != nil {
			return err
		}
		if in.Colors.Set && !in.Colors.Null {
			return setColors(tx, &product, in.Colors.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(product.ID)
}

// UpdateProduct applies the fields present in the payload. A present color
// list replaces every prior association; an absent one leaves them untouched.
func (r *ProductsRepository) UpdateProduct(id uint, in ProductInput) (*Product, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.First(&product, id).Error; err != nil {
			return notFound(err)
		}
		if err := validateProduct(tx, in, id, false); err != nil {
			return err
		}
		applyProductInput(&product, in)
		if err := duplicate(tx.Omit(clause.Associations).Save(&product).Error, "non_field_errors", msgProductConflict); err != nil {
			return err
		}
		if in.Colors.Set {
			var colors []ColorInput
			if !in.Colors.Null {
				colors = in.Colors.Value
			}
			return setColors(tx, &product, colors)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// DeleteProduct removes the product, its images and its color links. Colors
// themselves are shared and stay. The stored image keys are returned.
func (r *ProductsRepository) DeleteProduct(id uint) ([]string, error) {
	var keys []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if ok, err := exists(tx, &Product{}, id); err != nil {
			return err
		} else if !ok {
			return ErrNotFound
		}
		var err error
		keys, err = deleteProducts(tx, []uint{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func deleteProducts(tx *gorm.DB, productIDs []uint) ([]string, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var keys []string
	if err := tx.Model(&ProductImage{}).Where("product_id IN ?", productIDs).Order("id").Pluck("image", &keys).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("product_id IN ?", productIDs).Delete(&ProductImage{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Exec("DELETE FROM product_colors WHERE product_id IN ?", productIDs).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", productIDs).Delete(&Product{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// GetOrCreateColor returns the color row for value, inserting it if absent.
func GetOrCreateColor(tx *gorm.DB, value string) (ProductColor, error) {
	candidate := ProductColor{Color: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "color"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return ProductColor{}, err
	}
	var color ProductColor
	if err := tx.Where("color = ?", value).First(&color).Error; err != nil {
		return ProductColor{}, err
	}
	return color, nil
}

func setColors(tx *gorm.DB, product *Product, in []ColorInput) error {
	assoc := tx.Model(product).Association("Colors")
	if len(in) == 0 {
		return assoc.Clear()
	}

	seen := make(map[string]bool, len(in))
	colors := make([]ProductColor, 0, len(in))
	for _, c := range in {
		if seen[c.Color] {
			continue
		}
		seen[c.Color] = true
		color, err := GetOrCreateColor(tx, c.Color)
		if err != nil {
			return fmt.Errorf("resolve color %s: %w", c.Color, err)
		}
		colors = append(colors, color)
	}
	return assoc.Replace(colors)
}

func applyProductInput(p *Product, in ProductInput) {
	if in.ProductName.Set {
		p.ProductName = in.ProductName.Value
	}
	if in.TypeID.Set {
		p.TypeID = in.TypeID.Value
	}
	if in.InStock.Set {
		p.InStock = in.InStock.Value
	}
	if in.ArticleNumber.Set {
		p.ArticleNumber = in.ArticleNumber.Ptr()
		if p.ArticleNumber != nil && *p.ArticleNumber == "" {
			p.ArticleNumber = nil
		}
	}

	strs := []struct {
		o   Optional[string]
		dst **string
	}{
		{in.ThroatStandard, &p.ThroatStandard},
		{in.Dimensions, &p.Dimensions},
		{in.Compound, &p.Compound},
		{in.Material, &p.Material},
		{in.Package, &p.Package},
		{in.Application, &p.Application},
		{in.Description, &p.Description},
	}
	for _, s := range strs {
		if s.o.Set {
			*s.dst = s.o.Ptr()
		}
	}

	ints := []struct {
		o   Optional[int]
		dst **int
	}{
		{in.ThroatDiameter, &p.ThroatDiameter},
		{in.PackageVolume, &p.PackageVolume},
		{in.Weight, &p.Weight},
	}
	for _, n := range ints {
		if n.o.Set {
			*n.dst = n.o.Ptr()
		}
	}
}

const (
	msgProductExists   = "A product with this name already exists."
	msgArticleExists   = "A product with this article number already exists."
	msgProductConflict = "A product with these values already exists."
)

func validateProduct(tx *gorm.DB, in ProductInput, selfID uint, creating bool) error {
	v := &ValidationError{}

	requiredString(v, "product_name", in.ProductName, creating, 255)
	if in.ProductName.Set && !in.ProductName.Null && in.ProductName.Value != "" {
		dup, err := valueTaken(tx, "product_name", in.ProductName.Value, selfID)
		if err != nil {
			return err
		}
		if dup {
			v.Add("product_name", msgProductExists)
		}
	}

	switch {
	case !in.TypeID.Set:
		if creating {
			v.Add("type_id", msgRequired)
		}
	case in.TypeID.Null:
		v.Add("type_id", msgNotNull)
	default:
		ok, err := exists(tx, &Type{}, in.TypeID.Value)
		if err != nil {
			return err
		}
		if !ok {
			v.Add("type_id", fmt.Sprintf(msgNoSuchRef, in.TypeID.Value))
		}
	}

	optionalString(v, "throat_standard", in.ThroatStandard, 255)
	optionalString(v, "dimensions", in.Dimensions, 255)
	optionalString(v, "compound", in.Compound, 255)
	optionalString(v, "material", in.Material, 255)
	optionalString(v, "package", in.Package, 255)
	optionalString(v, "application", in.Application, 255)
	optionalString(v, "article_number", in.ArticleNumber, 50)

	nonNegative(v, "throat_diameter", in.ThroatDiameter)
	nonNegative(v, "package_volume", in.PackageVolume)
	nonNegative(v, "weight", in.Weight)

	if in.InStock.Set && in.InStock.Null {
		v.Add("in_stock", msgNotNull)
	}

	if a := in.ArticleNumber; a.Set && !a.Null && a.Value != "" {
		dup, err := valueTaken(tx, "article_number", a.Value, selfID)
		if err != nil {
			return err
		}
		if dup {
			v.Add("article_number", msgArticleExists)
		}
	}

	if in.Colors.Set && in.Colors.Null && creating {
		v.Add("colors", msgNotNull)
	}
	if in.Colors.Set && !in.Colors.Null {
		for _, c := range in.Colors.Value {
			if !ValidColor(c.Color) {
				v.Add("colors", msgBadColor)
				break
			}
		}
	}

	return v.OrNil()
}

// valueTaken reports whether another product already uses value in col.
func valueTaken(tx *gorm.DB, col, value string, selfID uint) (bool, error) {
	var n int64
	err := tx.Model(&Product{}).
		Where(fmt.Sprintf("%s = ? AND id <> ?", col), value, selfID).
		Count(&n).Error
	return n > 0, err
}
