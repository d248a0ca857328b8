package pdfexport

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// RevenueRow is one daily revenue line in the exported report.
type RevenueRow struct {
	Date          string
	TotalRevenue  string
	TotalOrders   int
	TotalSpending string
	NetRevenue    string
}

// RevenueReport carries everything the PDF needs, already formatted.
type RevenueReport struct {
	StartDate         string
	EndDate           string
	Rows              []RevenueRow
	TotalRevenue      string
	TotalSpending     string
	NetRevenue        string
	TotalOrders       int
	AverageOrderValue string
}

// BuildRevenueReport renders the daily revenue report as a PDF document.
func BuildRevenueReport(report RevenueReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Revenue Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Revenue Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", report.StartDate, report.EndDate))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Total Revenue: %s", report.TotalRevenue))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Total Spending: %s", report.TotalSpending))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Net Revenue: %s", report.NetRevenue))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Total Orders: %d", report.TotalOrders))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Average Order Value: %s", report.AverageOrderValue))
	pdf.Ln(10)

	// Table header
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	colWidths := []float64{32, 40, 24, 40, 40}
	headers := []string{"Date", "Revenue", "Orders", "Spending", "Net"}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range report.Rows {
		pdf.CellFormat(colWidths[0], 7, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], 7, row.TotalRevenue, "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], 7, fmt.Sprintf("%d", row.TotalOrders), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], 7, row.TotalSpending, "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], 7, row.NetRevenue, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(report.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 8, "No revenue recorded in this period.")
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render revenue report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
