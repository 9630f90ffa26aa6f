package repository

import (
	"context"

	"github.com/vsgo/appcore/domain"
)

// ProductPatch is a partial update; nil fields are left untouched
// remotely.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
}

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (string, error)
	Update(ctx context.Context, id string, patch ProductPatch) error
	Delete(ctx context.Context, id string) error
}
