package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

func (r *CategoriesRepository) GetAllCategories() ([]Category, error) {
	var categories []Category
	if err := r.db.Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(id uint) (*Category, error) {
	var category Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (r *CategoriesRepository) CreateCategory(in CategoryInput) (*Category, error) {
	var category Category
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := validateCategory(tx, in, 0, true); err != nil {
			return err
		}
		category.CategoryName = in.CategoryName.Value
		return duplicate(tx.Create(&category).Error, "category_name", msgCategoryExists)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) UpdateCategory(id uint, in CategoryInput) (*Category, error) {
	var category Category
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err)
		}
		if err := validateCategory(tx, in, id, false); err != nil {
			return err
		}
		if in.CategoryName.Set {
			category.CategoryName = in.CategoryName.Value
		}
		return duplicate(tx.Omit(clause.Associations).Save(&category).Error, "category_name", msgCategoryExists)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes the category together with its types and their
// products. It returns the stored image keys of the removed products.
func (r *CategoriesRepository) DeleteCategory(id uint) ([]string, error) {
	var keys []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var category Category
		if err := tx.First(&category, id).Error; err != nil {
			return notFound(err)
		}

		var typeIDs []uint
		if err := tx.Model(&Type{}).Where("category_id = ?", id).Pluck("id", &typeIDs).Error; err != nil {
			return err
		}
		var err error
		if keys, err = deleteTypes(tx, typeIDs); err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

const msgCategoryExists = "A category with this name already exists."

func validateCategory(tx *gorm.DB, in CategoryInput, selfID uint, creating bool) error {
	v := &ValidationError{}
	requiredString(v, "category_name", in.CategoryName, creating, 255)
	if in.CategoryName.Set && !in.CategoryName.Null && in.CategoryName.Value != "" {
		var n int64
		if err := tx.Model(&Category{}).
			Where("category_name = ? AND id <> ?", in.CategoryName.Value, selfID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			v.Add("category_name", msgCategoryExists)
		}
	}
	return v.OrNil()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicate turns a unique constraint violation into a validation error on field.
func duplicate(err error, field, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidationError(field, msg)
	}
	return err
}
