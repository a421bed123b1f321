package worker

// Fiscal issuance worker. Consumes invoice jobs for settled sales, asks the
// fiscal authority to authorize the invoice and stores the result. The
// Invoice row is written only after a granted authorization; until then the
// sale carries the pending/rejected/error state and its retry schedule.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rmoralez/pos-sub000/internal/infra"
	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxFiscalRetries bounds the retry sweep before a sale is parked in error
// state and its job lands in the DLQ.
const MaxFiscalRetries = 5

// InvoiceWorker processes fiscal issuance jobs from QueueInvoice.
type InvoiceWorker struct {
	fiscal      *infra.FiscalClient
	cb          *infra.CircuitBreaker
	invoices    repository.InvoiceRepository
	sales       repository.SaleRepository
	dispatcher  *Dispatcher
	pointOfSale int
	pdfPath     string
	business    string
}

func NewInvoiceWorker(
	fiscal *infra.FiscalClient,
	cb *infra.CircuitBreaker,
	invoices repository.InvoiceRepository,
	sales repository.SaleRepository,
	dispatcher *Dispatcher,
	pointOfSale int,
	pdfPath string,
	business string,
) *InvoiceWorker {
	return &InvoiceWorker{
		fiscal:      fiscal,
		cb:          cb,
		invoices:    invoices,
		sales:       sales,
		dispatcher:  dispatcher,
		pointOfSale: pointOfSale,
		pdfPath:     pdfPath,
		business:    business,
	}
}

// Process handles a single issuance job:
//  1. Load the sale with items, payments and customer
//  2. Bail out if the sale is cancelled, already issued, or already has an
//     invoice row (idempotency across redeliveries)
//  3. Pick the invoice class from the customer's tax status
//  4. Ask the authority for its last authorized number and submit number+1
//     through the circuit breaker with bounded retries
//  5. On approval write the Invoice row, generate the PDF and enqueue the
//     email; on rejection or exhaustion update the sale's fiscal state
func (w *InvoiceWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload InvoiceJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("invoice_worker: invalid payload")
		return
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("invoice_worker: invalid sale_id")
		return
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("invoice_worker: sale not found")
		return
	}
	if sale.Status != model.SaleStatusCompleted {
		log.Warn().Str("sale", sale.Number).Str("status", sale.Status).Msg("invoice_worker: sale not completed, skipping")
		return
	}
	if sale.FiscalStatus == model.FiscalStatusIssued || sale.FiscalStatus == model.FiscalStatusSkipped {
		return
	}

	// Redelivered job after a crash between authorization and status update.
	if existing, err := w.invoices.FindBySaleID(ctx, sale.ID); err == nil {
		log.Info().Str("sale", sale.Number).Msg("invoice_worker: invoice already on record")
		w.markIssued(ctx, sale)
		w.finishDocuments(ctx, sale, existing)
		return
	} else if err != gorm.ErrRecordNotFound {
		log.Error().Err(err).Str("sale", sale.Number).Msg("invoice_worker: invoice lookup failed")
		return
	}

	invoiceType, receiverTaxID, receiverName := classifyInvoice(sale)

	// Class A itemizes the tax; B and C report the gross only.
	net := sale.Total
	tax := decimal.Zero
	if invoiceType == model.InvoiceTypeA {
		net = sale.Subtotal
		tax = sale.TaxAmount
	}

	var (
		number   int64
		authResp *infra.AuthorizeResponse
	)
	callErr := w.cb.Execute(func() error {
		return withRetry(ctx, 3, func(attempt int) error {
			last, err := w.fiscal.LastAuthorized(ctx, w.pointOfSale, invoiceType)
			if err != nil {
				log.Warn().Err(err).Int("attempt", attempt+1).Str("sale", sale.Number).
					Msg("invoice_worker: last-authorized query failed, retrying")
				return err
			}
			number = last + 1

			resp, err := w.fiscal.Authorize(ctx, infra.AuthorizeRequest{
				InvoiceType:   invoiceType,
				PointOfSale:   w.pointOfSale,
				Number:        number,
				ReceiverTaxID: receiverTaxID,
				NetAmount:     net.InexactFloat64(),
				TaxAmount:     tax.InexactFloat64(),
				TotalAmount:   sale.Total.InexactFloat64(),
				SaleRef:       sale.ID.String(),
			})
			if err != nil {
				log.Warn().Err(err).Int("attempt", attempt+1).Str("sale", sale.Number).
					Msg("invoice_worker: authorize attempt failed, retrying")
				return err
			}
			authResp = resp
			return nil
		})
	})

	if callErr != nil {
		w.scheduleRetry(ctx, sale, callErr)
		return
	}

	if authResp.Result != "A" {
		msg := authResp.RejectionMessage()
		sale.FiscalStatus = model.FiscalStatusRejected
		sale.LastFiscalError = &msg
		sale.NextFiscalRetry = nil
		if err := w.sales.UpdateFiscal(ctx, sale); err != nil {
			log.Error().Err(err).Str("sale", sale.Number).Msg("invoice_worker: failed to record rejection")
		}
		log.Warn().Str("sale", sale.Number).Str("reason", msg).Msg("invoice_worker: authorization rejected")
		return
	}

	expiry, err := time.Parse("2006-01-02", authResp.AuthExpiry)
	if err != nil {
		log.Warn().Str("sale", sale.Number).Str("auth_expiry", authResp.AuthExpiry).
			Msg("invoice_worker: unparseable expiry, storing zero time")
	}

	invoice := &model.Invoice{
		TenantID:      sale.TenantID,
		SaleID:        sale.ID,
		Type:          invoiceType,
		Number:        number,
		PointOfSale:   w.pointOfSale,
		AuthCode:      authResp.AuthCode,
		AuthExpiry:    expiry,
		ReceiverTaxID: receiverTaxID,
		ReceiverName:  receiverName,
		NetAmount:     net,
		TaxAmount:     tax,
		TotalAmount:   sale.Total,
	}
	if err := w.invoices.Create(ctx, invoice); err != nil {
		// The authorization is granted; the redelivery path above recovers it.
		log.Error().Err(err).Str("sale", sale.Number).Msg("invoice_worker: failed to store invoice")
		w.scheduleRetry(ctx, sale, err)
		return
	}

	w.markIssued(ctx, sale)
	log.Info().Str("sale", sale.Number).Str("auth_code", invoice.AuthCode).
		Int64("number", invoice.Number).Msg("invoice_worker: invoice issued")

	w.finishDocuments(ctx, sale, invoice)
}

// finishDocuments generates the receipt PDF and enqueues the customer email.
// Both are best effort; neither failure affects the issued invoice.
func (w *InvoiceWorker) finishDocuments(ctx context.Context, sale *model.Sale, invoice *model.Invoice) {
	pdfPath, err := infra.GenerateReceiptPDF(sale, invoice, w.business, w.pdfPath)
	if err != nil {
		log.Warn().Err(err).Str("sale", sale.Number).Msg("invoice_worker: PDF generation failed")
		return
	}
	if invoice.PDFPath == nil || *invoice.PDFPath != pdfPath {
		invoice.PDFPath = &pdfPath
		if err := w.invoices.Update(ctx, invoice); err != nil {
			log.Warn().Err(err).Str("sale", sale.Number).Msg("invoice_worker: failed to store PDF path")
		}
	}

	if sale.Customer == nil || sale.Customer.Email == nil || *sale.Customer.Email == "" {
		return
	}
	job := EmailJobPayload{
		ToEmail: *sale.Customer.Email,
		Subject: fmt.Sprintf("%s receipt %s", w.business, sale.Number),
		Body:    fmt.Sprintf("Attached is your receipt.\nTotal: $%s", sale.Total.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("email", *sale.Customer.Email).Msg("invoice_worker: failed to enqueue email")
	}
}

func (w *InvoiceWorker) markIssued(ctx context.Context, sale *model.Sale) {
	sale.FiscalStatus = model.FiscalStatusIssued
	sale.NextFiscalRetry = nil
	sale.LastFiscalError = nil
	if err := w.sales.UpdateFiscal(ctx, sale); err != nil {
		log.Error().Err(err).Str("sale", sale.Number).Msg("invoice_worker: failed to mark sale issued")
	}
}

// scheduleRetry advances the attempt counter and either parks the sale for
// the retry sweep or, past the limit, moves it to error state and the DLQ.
func (w *InvoiceWorker) scheduleRetry(ctx context.Context, sale *model.Sale, cause error) {
	sale.FiscalRetries++
	msg := cause.Error()
	sale.LastFiscalError = &msg

	if sale.FiscalRetries >= MaxFiscalRetries {
		sale.FiscalStatus = model.FiscalStatusError
		sale.NextFiscalRetry = nil
		if err := w.sales.UpdateFiscal(ctx, sale); err != nil {
			log.Error().Err(err).Str("sale", sale.Number).Msg("invoice_worker: failed to record error state")
		}
		payload, _ := json.Marshal(InvoiceJobPayload{SaleID: sale.ID.String()})
		SendToDLQ(ctx, w.dispatcher.rdb, QueueInvoice, "invoice", payload,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxFiscalRetries, msg), sale.FiscalRetries)
		return
	}

	next := time.Now().Add(retryBackoff(sale.FiscalRetries))
	sale.FiscalStatus = model.FiscalStatusPending
	sale.NextFiscalRetry = &next
	if err := w.sales.UpdateFiscal(ctx, sale); err != nil {
		log.Error().Err(err).Str("sale", sale.Number).Msg("invoice_worker: failed to schedule retry")
		return
	}
	log.Warn().Str("sale", sale.Number).Int("retries", sale.FiscalRetries).
		Time("next_retry", next).Msg("invoice_worker: issuance failed, retry scheduled")
}

// classifyInvoice picks the invoice class from the customer's tax status:
// registered customers get class A with the tax itemized, exempt ones class
// C, everyone else (final consumers and anonymous sales) class B.
func classifyInvoice(sale *model.Sale) (invoiceType string, receiverTaxID, receiverName *string) {
	if sale.Customer == nil {
		return model.InvoiceTypeB, nil, nil
	}
	receiverTaxID = sale.Customer.TaxID
	name := sale.Customer.Name
	receiverName = &name
	switch sale.Customer.TaxStatus {
	case model.TaxStatusRegistered:
		return model.InvoiceTypeA, receiverTaxID, receiverName
	case model.TaxStatusExempt:
		return model.InvoiceTypeC, receiverTaxID, receiverName
	default:
		return model.InvoiceTypeB, receiverTaxID, receiverName
	}
}

// retryBackoff doubles per attempt starting at one minute, capped at 30
// minutes: 1m, 2m, 4m, 8m, ...
func retryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := time.Minute << uint(attempt-1)
	if backoff > 30*time.Minute {
		backoff = 30 * time.Minute
	}
	return backoff
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// between attempts: immediate, 1s, 2s. Returns nil on the first success.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
