package infra

// Receipt PDF generation using go-pdf/fpdf. Produces a thermal-style A7
// receipt: business header, document number, item table, totals, payment
// breakdown and, when the sale was fiscally authorized, the authorization
// code with its expiry.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF writes the PDF receipt for a completed sale and returns
// the absolute path. storagePath is created when missing; invoice may be nil
// for unissued sales.
func GenerateReceiptPDF(sale *model.Sale, invoice *model.Invoice, businessName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", strings.ReplaceAll(sale.Number, "/", "_"))
	filePath := filepath.Join(storagePath, fileName)

	// A7 is close to thermal receipt paper; not in fpdf's named sizes.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// Header
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, businessName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, sale.Number, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if sale.Customer != nil {
		pdf.CellFormat(contentW, 4, sale.Customer.Name, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// Item table
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		name := item.Name
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// Totals
	pdf.SetFont("Helvetica", "", 7)
	if !sale.DiscountAmount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+sale.DiscountAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !sale.TaxAmount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Incl. tax:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+sale.TaxAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// Payment breakdown
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, payment := range sale.Payments {
		label := "Paid (" + payment.Method + "):"
		pdf.CellFormat(col1+col2, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "$"+payment.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// Fiscal authorization block
	if invoice != nil {
		pdf.Ln(2)
		pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 6)
		pdf.CellFormat(contentW, 4,
			fmt.Sprintf("Invoice %04d-%08d", invoice.PointOfSale, invoice.Number), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 4, "Auth code: "+invoice.AuthCode, "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 4, "Valid until: "+invoice.AuthExpiry.Format("02/01/2006"), "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
