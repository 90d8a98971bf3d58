package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	billingapp "aquasmart-portal/internal/billing/application"
	billing "aquasmart-portal/internal/billing/domain"
	consumptionapp "aquasmart-portal/internal/consumption/application"
)

const (
	sheetSummary    = "Resumen"
	sheetDetail     = "Detalle"
	sheetStatistics = "Estadisticas"
)

type workbook struct {
	f      *excelize.File
	title  int
	header int
	money  int
	err    error
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetDetail, sheetStatistics} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	wb := &workbook{f: f}
	var err error
	if wb.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return nil, err
	}
	if wb.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1E78BE"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if wb.money, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return nil, err
	}
	return wb, nil
}

func (wb *workbook) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && wb.err == nil {
		wb.err = err
	}
	return name
}

func (wb *workbook) row(sheet string, row int, values ...any) {
	if wb.err != nil {
		return
	}
	if err := wb.f.SetSheetRow(sheet, wb.cell(1, row), &values); err != nil {
		wb.err = err
	}
}

func (wb *workbook) style(sheet string, row, fromCol, toCol, style int) {
	if wb.err != nil {
		return
	}
	if err := wb.f.SetCellStyle(sheet, wb.cell(fromCol, row), wb.cell(toCol, row), style); err != nil {
		wb.err = err
	}
}

func (wb *workbook) widths(sheet string, widths ...float64) {
	for i, w := range widths {
		if wb.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			wb.err = err
			return
		}
		if err := wb.f.SetColWidth(sheet, col, col, w); err != nil {
			wb.err = err
		}
	}
}

func (wb *workbook) bytes() ([]byte, error) {
	if wb.err != nil {
		return nil, wb.err
	}
	var buf bytes.Buffer
	if err := wb.f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// letterhead writes the title block and returns the next free row.
func (wb *workbook) letterhead(branding Branding, title string, generatedAt time.Time) int {
	wb.row(sheetSummary, 1, branding.Title+" - "+title)
	wb.style(sheetSummary, 1, 1, 1, wb.title)
	next := 2
	if branding.Organization != "" {
		wb.row(sheetSummary, next, branding.Organization)
		next++
	}
	wb.row(sheetSummary, next, "Generado", generatedAt.Format("2006-01-02 15:04:05"))
	return next + 2
}

// ConsumptionWorkbook renders the history as a Resumen/Detalle/Estadisticas workbook.
func ConsumptionWorkbook(subject consumptionapp.Subject, history consumptionapp.History, branding Branding, generatedAt time.Time) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer wb.f.Close()

	row := wb.letterhead(branding, "Historial de Consumo", generatedAt)
	wb.row(sheetSummary, row, subject.Title)
	wb.style(sheetSummary, row, 1, 2, wb.header)
	row++
	for _, field := range subject.Fields {
		wb.row(sheetSummary, row, field.Label, field.Value)
		row++
	}
	row++
	wb.row(sheetSummary, row, "Periodo", history.Start+" - "+history.End)
	wb.row(sheetSummary, row+1, "Agrupación", history.Label)
	wb.row(sheetSummary, row+2, "Consumo total", history.Total)
	wb.row(sheetSummary, row+3, "Lecturas", history.Readings)
	wb.widths(sheetSummary, 24, 36)

	wb.row(sheetDetail, 1, "Fecha", "Flujo", "Primera lectura")
	wb.style(sheetDetail, 1, 1, 3, wb.header)
	for i, bucket := range history.Buckets {
		wb.row(sheetDetail, i+2, bucket.Key, bucket.Sum, bucket.SampleTimestamp.Format("2006-01-02 15:04:05"))
		wb.style(sheetDetail, i+2, 2, 2, wb.money)
	}
	wb.widths(sheetDetail, 18, 14, 22)

	stats := history.Statistics
	wb.row(sheetStatistics, 1, "Indicador", "Valor", "Periodo")
	wb.style(sheetStatistics, 1, 1, 3, wb.header)
	wb.row(sheetStatistics, 2, "Periodos", stats.Count)
	wb.row(sheetStatistics, 3, "Total", stats.Total)
	wb.row(sheetStatistics, 4, "Promedio", stats.Average)
	wb.row(sheetStatistics, 5, "Máximo", stats.Max, stats.MaxKey)
	wb.row(sheetStatistics, 6, "Mínimo", stats.Min, stats.MinKey)
	wb.widths(sheetStatistics, 16, 14, 18)

	return wb.bytes()
}

// InvoiceWorkbook renders status totals, invoice detail and per-status shares.
func InvoiceWorkbook(report billingapp.Report, branding Branding) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer wb.f.Close()

	row := wb.letterhead(branding, "Reporte de Facturas", report.GeneratedAt)
	wb.row(sheetSummary, row, "Periodo", periodLabel(report.From, report.To))
	row += 2
	wb.row(sheetSummary, row, "Estado", "Facturas", "Usuarios", "Predios", "Lotes", "Monto")
	wb.style(sheetSummary, row, 1, 6, wb.header)
	row++
	for _, total := range report.Summary.ByStatus {
		writeStatusRow(wb, row, total.Status.Label(), total)
		row++
	}
	writeStatusRow(wb, row, "Total", report.Summary.Grand)
	wb.style(sheetSummary, row, 1, 1, wb.header)
	wb.widths(sheetSummary, 22, 12, 12, 12, 12, 18)

	wb.row(sheetDetail, 1, "Código", "Código lote", "Documento", "Cliente", "Estado", "Monto", "Creación", "Vencimiento")
	wb.style(sheetDetail, 1, 1, 8, wb.header)
	for i, inv := range report.Invoices {
		wb.row(sheetDetail, i+2, inv.Code, inv.LotCode, inv.ClientDocument, inv.ClientName, inv.Status, inv.Amount(), inv.CreationDate, inv.DuePaymentDate)
		wb.style(sheetDetail, i+2, 6, 6, wb.money)
	}
	wb.widths(sheetDetail, 14, 16, 14, 28, 12, 16, 20, 20)

	wb.row(sheetStatistics, 1, "Estado", "% Facturas", "% Monto")
	wb.style(sheetStatistics, 1, 1, 3, wb.header)
	grand := report.Summary.Grand
	for i, total := range report.Summary.ByStatus {
		wb.row(sheetStatistics, i+2,
			total.Status.Label(),
			fmt.Sprintf("%.2f%%", percent(float64(total.InvoiceCount), float64(grand.InvoiceCount))),
			fmt.Sprintf("%.2f%%", percent(total.AmountSum, grand.AmountSum)),
		)
	}
	if report.Summary.Unknown > 0 {
		wb.row(sheetStatistics, len(report.Summary.ByStatus)+3, "Facturas con estado desconocido", report.Summary.Unknown)
	}
	wb.widths(sheetStatistics, 30, 14, 14)

	return wb.bytes()
}

func writeStatusRow(wb *workbook, row int, label string, total billing.StatusTotal) {
	wb.row(sheetSummary, row, label, total.InvoiceCount, total.DistinctUsers, total.DistinctProperties, total.DistinctLots, total.AmountSum)
	wb.style(sheetSummary, row, 6, 6, wb.money)
}

func periodLabel(from, to string) string {
	switch {
	case from == "" && to == "":
		return "Todo el historial"
	case from == "":
		return "Hasta " + to
	case to == "":
		return "Desde " + from
	default:
		return from + " - " + to
	}
}
