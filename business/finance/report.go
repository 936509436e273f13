package finance

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"garmentFactory/domain"

	"github.com/go-pdf/fpdf"
)

// Report renders KPIs, the summary and the monthly table for a year as a PDF.
func (s *FinanceService) Report(ctx context.Context, year int) ([]byte, error) {
	kpis, err := s.KPIs(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := s.Monthly(ctx, year)
	if err != nil {
		return nil, err
	}

	return renderReport(kpis, summary, monthly, s.now().Format("2006-01-02 15:04"))
}

func renderReport(kpis domain.FinanceKPIs, summary domain.FinanceSummary, monthly domain.FinanceMonthly, generatedAt string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Finance report %d", monthly.Year), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Finance report %d", monthly.Year))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated "+generatedAt)
	pdf.Ln(10)

	section(pdf, "Key figures")
	keyValue(pdf, "Total revenue", money(kpis.TotalRevenue))
	keyValue(pdf, "Total orders", fmt.Sprint(kpis.TotalOrders))
	keyValue(pdf, "Paid orders", fmt.Sprint(kpis.PaidOrders))
	keyValue(pdf, "Average order value", money(kpis.AverageOrderValue))
	keyValue(pdf, "Pending payments", money(kpis.PendingPaymentAmount))
	keyValue(pdf, "Cancelled orders", fmt.Sprint(kpis.CancelledOrders))
	keyValue(pdf, "Low stock products", fmt.Sprint(kpis.LowStockProducts))
	pdf.Ln(4)

	section(pdf, "Revenue by payment method")
	methods := make([]string, 0, len(summary.RevenueByPaymentMethod))
	for m := range summary.RevenueByPaymentMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	for _, m := range methods {
		keyValue(pdf, m, money(summary.RevenueByPaymentMethod[domain.PaymentMethod(m)]))
	}
	pdf.Ln(4)

	section(pdf, "Orders by status")
	for _, st := range domain.OrderStatuses {
		keyValue(pdf, string(st), fmt.Sprint(summary.OrdersByStatus[st]))
	}
	pdf.Ln(4)

	section(pdf, "Top products")
	header(pdf, []string{"Product", "Quantity", "Revenue"}, []float64{100, 40, 40})
	for _, p := range summary.TopProducts {
		pdf.CellFormat(100, 7, p.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprint(p.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, money(p.Revenue), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "Monthly")
	header(pdf, []string{"Month", "Orders", "Revenue"}, []float64{60, 60, 60})
	for _, m := range monthly.Months {
		pdf.CellFormat(60, 7, m.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprint(m.Orders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 7, money(m.Revenue), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render finance report: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

func keyValue(pdf *fpdf.Fpdf, key, value string) {
	pdf.CellFormat(80, 6, key, "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, value, "", 1, "R", false, 0, "")
}

func header(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, c, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
