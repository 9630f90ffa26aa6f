package product

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/repository"
	"github.com/vsgo/appcore/usecase"
)

// CreateInput carries the raw form values for a new product.
type CreateInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
}

type UseCase struct {
	products     repository.ProductRepository
	connectivity usecase.ConnectivityChecker
	logger       *zap.Logger
}

func New(products repository.ProductRepository, connectivity usecase.ConnectivityChecker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		products:     products,
		connectivity: connectivity,
		logger:       logger,
	}
}

func (uc *UseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return uc.products.List(ctx)
}

func (uc *UseCase) CreateProduct(ctx context.Context, input CreateInput) (string, error) {
	if err := uc.checkConnection(); err != nil {
		return "", err
	}
	if err := validateCreate(input); err != nil {
		return "", err
	}

	id, err := uc.products.Create(ctx, &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
	})
	if err != nil {
		uc.logger.Error("product create failed", zap.Error(err))
		return "", err
	}
	return id, nil
}

func (uc *UseCase) UpdateProduct(ctx context.Context, id string, patch repository.ProductPatch) error {
	if err := uc.checkConnection(); err != nil {
		return err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.NewError(domain.ErrCodeValidation, "nama produk tidak boleh kosong")
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return domain.NewError(domain.ErrCodeValidation, "harga harus lebih dari 0")
	}
	return uc.products.Update(ctx, id, patch)
}

func (uc *UseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.checkConnection(); err != nil {
		return err
	}
	return uc.products.Delete(ctx, id)
}

func (uc *UseCase) checkConnection() error {
	if uc.connectivity != nil && !uc.connectivity.IsConnected() {
		return domain.ErrNoConnection
	}
	return nil
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domain.NewError(domain.ErrCodeValidation, "nama produk tidak boleh kosong")
	}
	if input.Price <= 0 {
		return domain.NewError(domain.ErrCodeValidation, "harga harus lebih dari 0")
	}
	if strings.TrimSpace(input.Category) == "" {
		return domain.NewError(domain.ErrCodeValidation, "kategori tidak boleh kosong")
	}
	return nil
}
