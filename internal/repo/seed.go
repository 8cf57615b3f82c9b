package repo

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tbourn/go-products-api/internal/domain"
)

// SampleProducts is the fixed catalogue loaded at startup.
func SampleProducts() []domain.ProductFields {
	return []domain.ProductFields{
		{Name: "Coffee Mug", Description: "White ceramic mug", Price: 9.99, Category: "Kitchen", InStock: true},
		{Name: "Running Shoes", Description: "Lightweight running shoes", Price: 79.99, Category: "Sports", InStock: true},
		{Name: "Bluetooth Speaker", Description: "Portable speaker", Price: 39.99, Category: "Electronics", InStock: false},
		{Name: "Notebook", Description: "A5 notebook", Price: 4.5, Category: "Stationery", InStock: true},
	}
}

// Creator is the subset of a store needed to seed it.
type Creator interface {
	Create(ctx context.Context, f domain.ProductFields) (*domain.Product, error)
}

// Seed inserts SampleProducts into s in order.
func Seed(ctx context.Context, s Creator) error {
	for _, f := range SampleProducts() {
		if _, err := s.Create(ctx, f); err != nil {
			return errors.Wrapf(err, "seed %q", f.Name)
		}
	}
	return nil
}
