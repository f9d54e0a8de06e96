package interfaces

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	reports "collections-cloud/internal/reports/application"
)

// BuildPortfolioPDF renders a minimal PDF for a portfolio report.
func BuildPortfolioPDF(report *reports.PortfolioReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Portfolio Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Tenant: %s", report.TenantID))
	pdf.Ln(5)
	if report.CollectorID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Collector: %s", report.CollectorID))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("As of: %s", report.AsOf.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Open credits: %d", report.Totals.OpenCredits))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Overdue credits: %d", report.Totals.OverdueCredits))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Outstanding balance: %s", report.Totals.Balance.String()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Overdue amount: %s", report.Totals.OverdueAmount.String()))
	pdf.Ln(8)

	// Rows table
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(45, 6, "Credit", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Client", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Balance", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Expected", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Completed", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Pending", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Overdue", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, row := range report.Rows {
		pdf.CellFormat(45, 6, row.CreditID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, row.ClientID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, string(row.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, row.Balance.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%d", row.Expected), "1", 0, "R", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%d", row.Completed), "1", 0, "R", false, 0, "")
		pdf.CellFormat(22, 6, pendingLabel(row.Pending), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, row.OverdueAmount.String(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPortfolioXLSX renders a minimal XLSX for a portfolio report.
func BuildPortfolioXLSX(report *reports.PortfolioReport) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	rowsSheet := "credits"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(rowsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Portfolio Report")
	_ = f.SetCellValue(summarySheet, "A3", "Tenant")
	_ = f.SetCellValue(summarySheet, "B3", report.TenantID)
	_ = f.SetCellValue(summarySheet, "A4", "Collector")
	_ = f.SetCellValue(summarySheet, "B4", report.CollectorID)
	_ = f.SetCellValue(summarySheet, "A5", "As of")
	_ = f.SetCellValue(summarySheet, "B5", report.AsOf.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A6", "Open credits")
	_ = f.SetCellValue(summarySheet, "B6", report.Totals.OpenCredits)
	_ = f.SetCellValue(summarySheet, "A7", "Overdue credits")
	_ = f.SetCellValue(summarySheet, "B7", report.Totals.OverdueCredits)
	_ = f.SetCellValue(summarySheet, "A8", "Outstanding balance")
	_ = f.SetCellValue(summarySheet, "B8", report.Totals.Balance.String())
	_ = f.SetCellValue(summarySheet, "A9", "Overdue amount")
	_ = f.SetCellValue(summarySheet, "B9", report.Totals.OverdueAmount.String())

	_ = f.SetCellValue(rowsSheet, "A1", "Credit")
	_ = f.SetCellValue(rowsSheet, "B1", "Client")
	_ = f.SetCellValue(rowsSheet, "C1", "Collector")
	_ = f.SetCellValue(rowsSheet, "D1", "Status")
	_ = f.SetCellValue(rowsSheet, "E1", "Frequency")
	_ = f.SetCellValue(rowsSheet, "F1", "Balance")
	_ = f.SetCellValue(rowsSheet, "G1", "Expected")
	_ = f.SetCellValue(rowsSheet, "H1", "Completed")
	_ = f.SetCellValue(rowsSheet, "I1", "Pending")
	_ = f.SetCellValue(rowsSheet, "J1", "Overdue amount")
	for i, row := range report.Rows {
		line := i + 2
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("A%d", line), row.CreditID)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("B%d", line), row.ClientID)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("C%d", line), row.CollectorID)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("D%d", line), string(row.Status))
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("E%d", line), string(row.Frequency))
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("F%d", line), row.Balance.String())
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("G%d", line), row.Expected)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("H%d", line), row.Completed)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("I%d", line), pendingLabel(row.Pending))
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("J%d", line), row.OverdueAmount.String())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var portfolioHTML = template.Must(template.New("portfolio").Funcs(template.FuncMap{
	"pending": pendingLabel,
	"date":    func(t time.Time) string { return t.Format("2006-01-02") },
}).Parse(`<!DOCTYPE html>
<html>
<head><title>Portfolio Report</title></head>
<body>
<h1>Portfolio Report</h1>
<p>Tenant: {{.TenantID}}{{if .CollectorID}} | Collector: {{.CollectorID}}{{end}} | As of: {{date .AsOf}}</p>
<p>Open credits: {{.Totals.OpenCredits}} | Overdue credits: {{.Totals.OverdueCredits}} |
Outstanding balance: {{.Totals.Balance}} | Overdue amount: {{.Totals.OverdueAmount}}</p>
<table border="1">
<tr><th>Credit</th><th>Client</th><th>Status</th><th>Balance</th><th>Expected</th><th>Completed</th><th>Pending</th><th>Overdue amount</th></tr>
{{range .Rows}}<tr><td>{{.CreditID}}</td><td>{{.ClientID}}</td><td>{{.Status}}</td><td>{{.Balance}}</td><td>{{.Expected}}</td><td>{{.Completed}}</td><td>{{pending .Pending}}</td><td>{{.OverdueAmount}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// BuildPortfolioHTML renders an HTML view of a portfolio report.
func BuildPortfolioHTML(report *reports.PortfolioReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := portfolioHTML.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pendingLabel renders an unavailable pending count as "n/a" instead of a
// misleading zero.
func pendingLabel(pending *int) string {
	if pending == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *pending)
}
