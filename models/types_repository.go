package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TypesRepository struct {
	db *gorm.DB
}

func NewTypesRepository(db *gorm.DB) *TypesRepository {
	return &TypesRepository{db: db}
}

// GetTypes lists types with their category, optionally restricted to one category.
func (r *TypesRepository) GetTypes(categoryID *int64) ([]Type, error) {
	var types []Type
	query := r.db.Preload("Category").Order("id")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if err := query.Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *TypesRepository) GetByID(id uint) (*Type, error) {
	var t Type
	if err := r.db.Preload("Category").First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TypesRepository) CreateType(in TypeInput) (*Type, error) {
	var t Type
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := validateType(tx, in, true); err != nil {
			return err
		}
		t.TypeName = in.TypeName.Value
		t.CategoryID = in.CategoryID.Value
		return tx.Omit(clause.Associations).Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(t.ID)
}

func (r *TypesRepository) UpdateType(id uint, in TypeInput) (*Type, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var t Type
		if err := tx.First(&t, id).Error; err != nil {
			return notFound(err)
		}
		if err := validateType(tx, in, false); err != nil {
			return err
		}
		if in.TypeName.Set {
			t.TypeName = in.TypeName.Value
		}
		if in.CategoryID.Set {
			t.CategoryID = in.CategoryID.Value
		}
		return tx.Omit(clause.Associations).Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// DeleteType removes the type and its products, returning their image keys.
func (r *TypesRepository) DeleteType(id uint) ([]string, error) {
	var keys []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var t Type
		if err := tx.First(&t, id).Error; err != nil {
			return notFound(err)
		}
		var err error
		keys, err = deleteTypes(tx, []uint{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func validateType(tx *gorm.DB, in TypeInput, creating bool) error {
	v := &ValidationError{}
	requiredString(v, "type_name", in.TypeName, creating, 255)

	switch {
	case !in.CategoryID.Set:
		if creating {
			v.Add("category_id", msgRequired)
		}
	case in.CategoryID.Null:
		v.Add("category_id", msgNotNull)
	default:
		ok, err := exists(tx, &Category{}, in.CategoryID.Value)
		if err != nil {
			return err
		}
		if !ok {
			v.Add("category_id", fmt.Sprintf(msgNoSuchRef, in.CategoryID.Value))
		}
	}
	return v.OrNil()
}

func deleteTypes(tx *gorm.DB, typeIDs []uint) ([]string, error) {
	if len(typeIDs) == 0 {
		return nil, nil
	}
	var productIDs []uint
	if err := tx.Model(&Product{}).Where("type_id IN ?", typeIDs).Pluck("id", &productIDs).Error; err != nil {
		return nil, err
	}
	keys, err := deleteProducts(tx, productIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", typeIDs).Delete(&Type{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func exists(tx *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
