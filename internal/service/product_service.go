package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantInput describes one variant of a product.
type VariantInput struct {
	Name      string
	UnitPrice *decimal.Decimal
}

type ProductInput struct {
	TenantID    uuid.UUID
	SKU         string
	Name        string
	Description *string
	UnitPrice   decimal.Decimal
	CostPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Variants    []VariantInput
}

// ProductService manages the sellable catalog. Prices are tax inclusive and
// TaxRate is a percentage in [0,100].
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative")
	}
	product := &model.Product{
		TenantID:    in.TenantID,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		UnitPrice:   in.UnitPrice,
		CostPrice:   in.CostPrice,
		TaxRate:     in.TaxRate,
		IsActive:    true,
	}
	for _, v := range in.Variants {
		product.Variants = append(product.Variants, model.ProductVariant{
			TenantID:  in.TenantID,
			Name:      v.Name,
			UnitPrice: v.UnitPrice,
			IsActive:  true,
		})
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.TenantID != tenantID {
		return nil, fmt.Errorf("product %s not found", id)
	}
	return product, nil
}

// UpdateProduct overwrites the catalog fields. The variant set is replaced
// only when the input carries variants; an empty set leaves them untouched.
func (s *ProductService) UpdateProduct(ctx context.Context, tenantID, id uuid.UUID, in ProductInput) (*model.Product, error) {
	product, err := s.GetProduct(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	product.SKU = in.SKU
	product.Name = in.Name
	product.Description = in.Description
	product.UnitPrice = in.UnitPrice
	product.CostPrice = in.CostPrice
	product.TaxRate = in.TaxRate
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate hides the product from the catalog. Existing documents keep
// their denormalized name and prices.
func (s *ProductService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, tenantID, id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.repo.List(ctx, filter)
}
