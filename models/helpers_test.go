package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDB(DBOptions{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		Logger:       logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db         *gorm.DB
	categories *CategoriesRepository
	types      *TypesRepository
	products   *ProductsRepository
	images     *ImagesRepository
}

func newFixture(t *testing.T) *fixture {
	db := setupDB(t)
	return &fixture{
		db:         db,
		categories: NewCategoriesRepository(db),
		types:      NewTypesRepository(db),
		products:   NewProductsRepository(db),
		images:     NewImagesRepository(db),
	}
}

func (f *fixture) category(t *testing.T, name string) *Category {
	t.Helper()
	c, err := f.categories.CreateCategory(CategoryInput{CategoryName: Some(name)})
	require.NoError(t, err)
	return c
}

func (f *fixture) typ(t *testing.T, name string, categoryID uint) *Type {
	t.Helper()
	ty, err := f.types.CreateType(TypeInput{TypeName: Some(name), CategoryID: Some(categoryID)})
	require.NoError(t, err)
	return ty
}

func (f *fixture) product(t *testing.T, in ProductInput) *Product {
	t.Helper()
	p, err := f.products.CreateProduct(in)
	require.NoError(t, err)
	return p
}

func colors(values ...string) Optional[[]ColorInput] {
	out := make([]ColorInput, len(values))
	for i, v := range values {
		out[i] = ColorInput{Color: v}
	}
	return Some(out)
}
