package remote

import (
	"context"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/internal/gateway"
	"github.com/vsgo/appcore/repository"
)

const productsCollection = "products"

type productRepository struct {
	gw *gateway.Gateway
}

// NewProductRepository returns the remote-store implementation of
// ProductRepository, bound to the products collection.
func NewProductRepository(gw *gateway.Gateway) repository.ProductRepository {
	return &productRepository{gw: gw}
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	docs, err := r.gw.List(ctx, productsCollection)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, productFromDocument(doc))
	}
	return products, nil
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) (string, error) {
	return r.gw.Create(ctx, productsCollection, map[string]interface{}{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
	})
}

func (r *productRepository) Update(ctx context.Context, id string, patch repository.ProductPatch) error {
	fields := make(map[string]interface{})
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	return r.gw.Update(ctx, productsCollection, id, fields)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.gw.Delete(ctx, productsCollection, id)
}

func productFromDocument(doc gateway.Document) domain.Product {
	return domain.Product{
		ID:          doc.ID,
		UserID:      stringField(doc.Fields, "userId"),
		Name:        stringField(doc.Fields, "name"),
		Description: stringField(doc.Fields, "description"),
		Price:       floatField(doc.Fields, "price"),
		Category:    stringField(doc.Fields, "category"),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
