package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tbourn/go-products-api/internal/domain"
)

// replaceColumns lists every column Replace overwrites; id is never touched.
var replaceColumns = []string{"name", "description", "price", "category", "in_stock"}

// SQLStore is a GORM-backed product store. It satisfies the same contract as
// MemoryStore; List orders by SQLite rowid to preserve insertion order.
type SQLStore struct {
	DB *gorm.DB

	newID func() string
}

// NewSQLStore wraps an opened and migrated database handle.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{DB: db, newID: uuid.NewString}
}

// Create inserts a product with a fresh UUID.
func (s *SQLStore) Create(ctx context.Context, f domain.ProductFields) (*domain.Product, error) {
	p := domain.NewProduct(s.newID(), f)
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, errors.Wrap(err, "insert product")
	}
	return &p, nil
}

// Get fetches a product by id, or returns ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	return &p, nil
}

// List returns every product in insertion order.
func (s *SQLStore) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	if err := s.DB.WithContext(ctx).Order("rowid").Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return out, nil
}

// Replace overwrites all non-id columns. Zero values are written too, so a
// replace never merges with the previous row.
func (s *SQLStore) Replace(ctx context.Context, id string, f domain.ProductFields) (*domain.Product, error) {
	p := domain.NewProduct(id, f)
	res := s.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Select(replaceColumns).
		Updates(&p)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "replace product")
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Remove deletes a product by id, or returns ErrNotFound.
func (s *SQLStore) Remove(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
