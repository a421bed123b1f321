package handler

import (
	"time"

	"github.com/rmoralez/pos-sub000/internal/dto"
	"github.com/rmoralez/pos-sub000/internal/model"
)

func fmtTime(t time.Time) string { return t.Format(time.RFC3339) }

func toSaleResponse(s *model.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = dto.SaleItemResponse{
			ProductID:      it.ProductID.String(),
			VariantID:      strPtr(it.VariantID),
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TaxAmount:      it.TaxAmount,
			Total:          it.Total,
		}
	}
	payments := make([]dto.SalePaymentResponse, len(s.Payments))
	for i, p := range s.Payments {
		payments[i] = dto.SalePaymentResponse{Method: p.Method, Amount: p.Amount, Reference: p.Reference}
	}
	return dto.SaleResponse{
		ID:             s.ID.String(),
		Number:         s.Number,
		LocationID:     s.LocationID.String(),
		CustomerID:     strPtr(s.CustomerID),
		Items:          items,
		Payments:       payments,
		Subtotal:       s.Subtotal,
		TaxAmount:      s.TaxAmount,
		DiscountAmount: s.DiscountAmount,
		Total:          s.Total,
		Status:         s.Status,
		FiscalStatus:   s.FiscalStatus,
		QuoteID:        strPtr(s.QuoteID),
		CreatedAt:      fmtTime(s.CreatedAt),
	}
}

func toQuoteResponse(q *model.Quote) dto.QuoteResponse {
	items := make([]dto.SaleItemResponse, len(q.Items))
	for i, it := range q.Items {
		items[i] = dto.SaleItemResponse{
			ProductID:      it.ProductID.String(),
			VariantID:      strPtr(it.VariantID),
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TaxAmount:      it.TaxAmount,
			Total:          it.Total,
		}
	}
	var validUntil *string
	if q.ValidUntil != nil {
		s := q.ValidUntil.Format("2006-01-02")
		validUntil = &s
	}
	return dto.QuoteResponse{
		ID:             q.ID.String(),
		Number:         q.Number,
		LocationID:     q.LocationID.String(),
		CustomerID:     strPtr(q.CustomerID),
		Items:          items,
		Subtotal:       q.Subtotal,
		TaxAmount:      q.TaxAmount,
		DiscountAmount: q.DiscountAmount,
		Total:          q.Total,
		Status:         q.Status,
		SaleID:         strPtr(q.SaleID),
		ValidUntil:     validUntil,
		CreatedAt:      fmtTime(q.CreatedAt),
	}
}

func toAccountResponse(a *model.LedgerAccount) dto.AccountResponse {
	return dto.AccountResponse{
		ID:             a.ID.String(),
		Kind:           a.Kind,
		Name:           a.Name,
		CurrentBalance: a.CurrentBalance,
		CreditLimit:    a.CreditLimit,
		IsActive:       a.IsActive,
	}
}

func toMovementResponse(m *model.LedgerMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID.String(),
		AccountID:     m.AccountID.String(),
		Type:          m.Type,
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		Concept:       m.Concept,
		DocumentID:    strPtr(m.DocumentID),
		CorrelationID: strPtr(m.CorrelationID),
		CreatedAt:     fmtTime(m.CreatedAt),
	}
}

func toMovementList(movements []model.LedgerMovement, total int64, page, limit int) dto.MovementListResponse {
	data := make([]dto.MovementResponse, len(movements))
	for i := range movements {
		data[i] = toMovementResponse(&movements[i])
	}
	return dto.MovementListResponse{Data: data, Total: total, Page: page, Limit: limit}
}

func toCustomerResponse(cu *model.Customer) dto.CustomerResponse {
	resp := dto.CustomerResponse{
		ID:        cu.ID.String(),
		Name:      cu.Name,
		TaxID:     cu.TaxID,
		TaxStatus: cu.TaxStatus,
		Email:     cu.Email,
		Phone:     cu.Phone,
		AccountID: cu.AccountID.String(),
		IsActive:  cu.IsActive,
	}
	if cu.Account != nil {
		resp.Balance = cu.Account.CurrentBalance
		resp.CreditLimit = cu.Account.CreditLimit
	}
	return resp
}

func toStockMovementResponse(m *model.StockMovement) dto.StockMovementResponse {
	resp := dto.StockMovementResponse{
		ID:             m.ID.String(),
		StockItemID:    m.StockItemID.String(),
		Type:           m.Type,
		Quantity:       m.Quantity,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		DocumentID:     strPtr(m.DocumentID),
		CreatedAt:      fmtTime(m.CreatedAt),
	}
	if m.StockItem != nil && m.StockItem.Product != nil {
		resp.Product = m.StockItem.Product.Name
	}
	return resp
}
