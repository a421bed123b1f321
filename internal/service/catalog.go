package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/pricing"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// pricedLine is one catalog-resolved, fully priced document line, shared by
// sales and quotes before being mapped onto their own item models.
type pricedLine struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	TaxRate       decimal.Decimal
	DiscountType  string
	DiscountValue decimal.Decimal
	Result        pricing.LineResult
}

// priceCatalogLines resolves each input against the catalog and runs the
// pricing engine. Variant price overrides win over the product price;
// variant names are appended to the denormalized line name.
func priceCatalogLines(ctx context.Context, products repository.ProductRepository, tenantID uuid.UUID, inputs []SaleItemInput) ([]pricedLine, error) {
	lines := make([]pricedLine, 0, len(inputs))

	for _, in := range inputs {
		product, err := products.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("loading product %s: %w", in.ProductID, err)
		}
		if product.TenantID != tenantID {
			return nil, fmt.Errorf("product %s not found", in.ProductID)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("product %s is inactive", product.Name)
		}

		name := product.Name
		price := product.UnitPrice
		if in.VariantID != nil {
			variant, err := products.FindVariantByID(ctx, *in.VariantID)
			if err != nil {
				return nil, fmt.Errorf("loading variant %s: %w", *in.VariantID, err)
			}
			if variant.ProductID != product.ID {
				return nil, fmt.Errorf("variant %s does not belong to product %s", *in.VariantID, product.Name)
			}
			name = fmt.Sprintf("%s (%s)", product.Name, variant.Name)
			if variant.UnitPrice != nil {
				price = *variant.UnitPrice
			}
		}

		result, err := pricing.ComputeLine(pricing.Line{
			Quantity:      in.Quantity,
			UnitPrice:     price,
			TaxRate:       product.TaxRate,
			DiscountType:  in.DiscountType,
			DiscountValue: in.DiscountValue,
		})
		if err != nil {
			return nil, fmt.Errorf("pricing %s: %w", name, err)
		}

		lines = append(lines, pricedLine{
			ProductID:     in.ProductID,
			VariantID:     in.VariantID,
			Name:          name,
			Quantity:      in.Quantity,
			UnitPrice:     price,
			TaxRate:       product.TaxRate,
			DiscountType:  in.DiscountType,
			DiscountValue: in.DiscountValue,
			Result:        result,
		})
	}
	return lines, nil
}

func lineResults(lines []pricedLine) []pricing.LineResult {
	results := make([]pricing.LineResult, len(lines))
	for i, l := range lines {
		results[i] = l.Result
	}
	return results
}

func optionalDiscountType(t string) *string {
	if t == "" {
		return nil
	}
	return &t
}
