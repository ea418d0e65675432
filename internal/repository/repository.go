// Package repository reaches the product store. The hosted PostgREST API is
// the production backend; GORM and the in-memory store serve self-hosted
// setups and tests.
package repository

import (
	"context"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
)

type ProductRepository interface {
	// List returns every product, newest first.
	List(ctx context.Context) (domain.Products, error)
	GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	// Create stores a payload and returns the stored representation.
	Create(ctx context.Context, payload domain.Payload) (*domain.Product, error)
	// Update writes the payload's columns onto an existing product.
	Update(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error)
	Delete(ctx context.Context, id domain.ProductID) error
}
