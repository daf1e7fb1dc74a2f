package models

import (
	"gorm.io/gorm"
)

type ImagesRepository struct {
	db *gorm.DB
}

func NewImagesRepository(db *gorm.DB) *ImagesRepository {
	return &ImagesRepository{db: db}
}

// GetImages lists images, optionally restricted to one product.
func (r *ImagesRepository) GetImages(productID *int64) ([]ProductImage, error) {
	var images []ProductImage
	query := r.db.Order("id")
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if err := query.Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *ImagesRepository) GetByID(id uint) (*ProductImage, error) {
	var image ProductImage
	if err := r.db.First(&image, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &image, nil
}

// ProductName returns the name of productID, or ErrNotFound.
func (r *ImagesRepository) ProductName(productID uint) (string, error) {
	var p Product
	if err := r.db.Select("id", "product_name").First(&p, productID).Error; err != nil {
		return "", notFound(err)
	}
	return p.ProductName, nil
}

// CreateImage records a stored object for productID.
func (r *ImagesRepository) CreateImage(productID uint, key string) (*ProductImage, error) {
	image := ProductImage{ProductID: productID, Image: key}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &Product{}, productID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes the image row and returns it so the caller can drop the stored object.
func (r *ImagesRepository) DeleteImage(id uint) (*ProductImage, error) {
	var image ProductImage
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&image, id).Error; err != nil {
			return notFound(err)
		}
		return tx.Delete(&image).Error
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}
