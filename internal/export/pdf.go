package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	billingapp "aquasmart-portal/internal/billing/application"
	consumptionapp "aquasmart-portal/internal/consumption/application"
)

const (
	pdfMargin     = 15.0
	pdfRowHeight  = 6.0
	pdfFooterGap  = 18.0
	chartWidthPx  = 900
	chartHeightPx = 380
)

type field struct {
	label string
	value string
}

func subjectFields(subject consumptionapp.Subject) []field {
	out := make([]field, 0, len(subject.Fields))
	for _, f := range subject.Fields {
		out = append(out, field{label: f.Label, value: f.Value})
	}
	return out
}

type column struct {
	title string
	width float64
	align string
}

// document wraps a gofpdf document with the portal letterhead.
type document struct {
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	branding Branding
	title    string
	images   int
}

func newDocument(branding Branding, title string, generatedAt time.Time) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfFooterGap)
	pdf.AliasNbPages("")
	pdf.SetTitle(title, true)
	pdf.SetCreator(branding.Title, true)

	d := &document{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		branding: branding,
		title:    title,
	}
	if len(branding.Logo) > 0 {
		pdf.RegisterImageOptionsReader("logo", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(branding.Logo))
	}

	pdf.SetHeaderFunc(func() {
		d.watermark()
		pageW, _ := pdf.GetPageSize()
		x := pdfMargin
		if len(branding.Logo) > 0 {
			pdf.ImageOptions("logo", pdfMargin, 8, 0, 14, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			x = pdfMargin + 45
		}
		pdf.SetXY(x, 9)
		pdf.SetFont("Arial", "B", 15)
		pdf.SetTextColor(15, 80, 140)
		pdf.CellFormat(pageW-x-pdfMargin, 7, d.tr(branding.Title+" - "+title), "", 1, "L", false, 0, "")
		pdf.SetX(x)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(90, 90, 90)
		subtitle := "Generado: " + generatedAt.Format("2006-01-02 15:04")
		if branding.Organization != "" {
			subtitle = branding.Organization + " | " + subtitle
		}
		pdf.CellFormat(pageW-x-pdfMargin, 5, d.tr(subtitle), "", 1, "L", false, 0, "")
		pdf.SetDrawColor(30, 120, 190)
		pdf.Line(pdfMargin, 25, pageW-pdfMargin, 25)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetY(30)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, d.tr(fmt.Sprintf("Página %d de {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) watermark() {
	text := d.branding.Watermark
	if text == "" {
		return
	}
	pdf := d.pdf
	pageW, pageH := pdf.GetPageSize()
	pdf.SetFont("Arial", "B", 60)
	pdf.SetTextColor(235, 240, 245)
	w := pdf.GetStringWidth(d.tr(text))
	pdf.TransformBegin()
	pdf.TransformRotate(45, pageW/2, pageH/2)
	pdf.Text(pageW/2-w/2, pageH/2, d.tr(text))
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}

func (d *document) ensureSpace(h float64) bool {
	_, pageH := d.pdf.GetPageSize()
	if d.pdf.GetY()+h > pageH-pdfFooterGap {
		d.pdf.AddPage()
		return true
	}
	return false
}

func (d *document) section(title string) {
	d.ensureSpace(14)
	d.pdf.Ln(3)
	d.pdf.SetFont("Arial", "B", 11)
	d.pdf.SetTextColor(15, 80, 140)
	d.pdf.CellFormat(0, 7, d.tr(title), "", 1, "L", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
}

// infoBox draws a bordered box of label/value lines in two columns.
func (d *document) infoBox(title string, fields []field) {
	pdf := d.pdf
	pageW, _ := pdf.GetPageSize()
	boxW := pageW - 2*pdfMargin
	rows := (len(fields) + 1) / 2
	boxH := 8 + float64(rows)*pdfRowHeight + 2
	d.ensureSpace(boxH + 4)

	x, y := pdfMargin, pdf.GetY()
	pdf.SetFillColor(240, 246, 251)
	pdf.SetDrawColor(30, 120, 190)
	pdf.Rect(x, y, boxW, boxH, "DF")
	pdf.SetXY(x+3, y+1.5)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(boxW-6, 6, d.tr(title), "", 1, "L", false, 0, "")

	colW := (boxW - 6) / 2
	for i, f := range fields {
		col := float64(i % 2)
		line := float64(i / 2)
		pdf.SetXY(x+3+col*colW, y+8+line*pdfRowHeight)
		pdf.SetFont("Arial", "B", 9)
		label := d.tr(f.label + ": ")
		labelW := pdf.GetStringWidth(label) + 1
		pdf.CellFormat(labelW, pdfRowHeight, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(colW-labelW, pdfRowHeight, d.tr(truncate(f.value, 40)), "", 0, "L", false, 0, "")
	}
	pdf.SetY(y + boxH + 4)
}

func (d *document) tableHeader(columns []column) {
	pdf := d.pdf
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(30, 120, 190)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetX(pdfMargin)
	for _, c := range columns {
		pdf.CellFormat(c.width, pdfRowHeight+1, d.tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 9)
}

// table draws rows, repeating the header on every new page. The last row is
// drawn bold when bold is set.
func (d *document) table(columns []column, rows [][]string, boldLast bool) {
	pdf := d.pdf
	d.ensureSpace(3 * pdfRowHeight)
	d.tableHeader(columns)
	for i, row := range rows {
		if d.ensureSpace(pdfRowHeight) {
			d.tableHeader(columns)
		}
		last := boldLast && i == len(rows)-1
		if last {
			pdf.SetFont("Arial", "B", 9)
			pdf.SetFillColor(220, 232, 244)
		} else if i%2 == 1 {
			pdf.SetFillColor(247, 249, 251)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetX(pdfMargin)
		for j, c := range columns {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			pdf.CellFormat(c.width, pdfRowHeight, d.tr(value), "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)
		if last {
			pdf.SetFont("Arial", "", 9)
		}
	}
}

// chart places a rendered bar chart, starting a page when it does not fit.
func (d *document) chart(title string, bars []ChartBar) error {
	png, err := RenderBarChart(bars, chartWidthPx, chartHeightPx)
	if err != nil {
		return err
	}
	pageW, _ := d.pdf.GetPageSize()
	w := pageW - 2*pdfMargin
	h := w * chartHeightPx / chartWidthPx
	d.ensureSpace(h + 14)
	d.section(title)

	d.images++
	name := fmt.Sprintf("chart%d", d.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	d.pdf.ImageOptions(name, pdfMargin, d.pdf.GetY(), w, h, false, opts, 0, "")
	d.pdf.SetY(d.pdf.GetY() + h + 2)
	if len(bars) > 0 {
		d.pdf.SetFont("Arial", "I", 8)
		caption := fmt.Sprintf("%s  ...  %s", bars[0].Label, bars[len(bars)-1].Label)
		d.pdf.CellFormat(0, 5, d.tr(caption), "", 1, "C", false, 0, "")
	}
	return nil
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConsumptionPDF renders a consumption history report.
func ConsumptionPDF(subject consumptionapp.Subject, history consumptionapp.History, branding Branding, generatedAt time.Time) ([]byte, error) {
	if history.Empty() {
		return nil, ErrNothingToExport
	}
	d := newDocument(branding, "Historial de Consumo", generatedAt)
	d.infoBox(subject.Title, subjectFields(subject))

	stats := history.Statistics
	d.infoBox("Resumen del periodo", []field{
		{label: "Periodo", value: history.Start + " - " + history.End},
		{label: "Agrupación", value: history.Label},
		{label: "Consumo total", value: formatNumber(history.Total, 2)},
		{label: "Promedio", value: formatNumber(stats.Average, 2)},
		{label: "Máximo", value: formatNumber(stats.Max, 2) + " (" + orDash(stats.MaxKey) + ")"},
		{label: "Mínimo", value: formatNumber(stats.Min, 2) + " (" + orDash(stats.MinKey) + ")"},
	})

	d.section("Detalle de consumo")
	columns := []column{
		{title: "#", width: 15, align: "C"},
		{title: "Fecha", width: 70, align: "L"},
		{title: "Flujo", width: 50, align: "R"},
		{title: "% del total", width: 45, align: "R"},
	}
	rows := make([][]string, 0, len(history.Buckets)+1)
	bars := make([]ChartBar, 0, len(history.Buckets))
	for i, bucket := range history.Buckets {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			bucket.Key,
			formatNumber(bucket.Sum, 2),
			formatNumber(percent(bucket.Sum, stats.Total), 1) + "%",
		})
		bars = append(bars, ChartBar{Label: bucket.Key, Value: bucket.Sum})
	}
	rows = append(rows, []string{"", "Total", formatNumber(stats.Total, 2), "100%"})
	d.table(columns, rows, true)

	if err := d.chart("Gráfico de consumo", bars); err != nil {
		return nil, err
	}
	return d.bytes()
}

// InvoicePDF renders the invoice totals and detail report.
func InvoicePDF(report billingapp.Report, branding Branding) ([]byte, error) {
	if report.Empty() {
		return nil, ErrNothingToExport
	}
	d := newDocument(branding, "Reporte de Facturas", report.GeneratedAt)
	grand := report.Summary.Grand
	d.infoBox("Información del reporte", []field{
		{label: "Periodo", value: periodLabel(report.From, report.To)},
		{label: "Facturas", value: fmt.Sprintf("%d", grand.InvoiceCount)},
		{label: "Usuarios", value: fmt.Sprintf("%d", grand.DistinctUsers)},
		{label: "Predios", value: fmt.Sprintf("%d", grand.DistinctProperties)},
		{label: "Lotes", value: fmt.Sprintf("%d", grand.DistinctLots)},
		{label: "Monto total", value: formatMoney(grand.AmountSum)},
	})

	d.section("Totales por estado")
	statusColumns := []column{
		{title: "Estado", width: 40, align: "L"},
		{title: "Facturas", width: 25, align: "R"},
		{title: "Usuarios", width: 25, align: "R"},
		{title: "Predios", width: 25, align: "R"},
		{title: "Lotes", width: 25, align: "R"},
		{title: "Monto", width: 40, align: "R"},
	}
	statusRows := make([][]string, 0, len(report.Summary.ByStatus)+1)
	bars := make([]ChartBar, 0, len(report.Summary.ByStatus))
	for _, total := range report.Summary.ByStatus {
		statusRows = append(statusRows, []string{
			total.Status.Label(),
			fmt.Sprintf("%d", total.InvoiceCount),
			fmt.Sprintf("%d", total.DistinctUsers),
			fmt.Sprintf("%d", total.DistinctProperties),
			fmt.Sprintf("%d", total.DistinctLots),
			formatMoney(total.AmountSum),
		})
		bars = append(bars, ChartBar{Label: total.Status.Label(), Value: total.AmountSum})
	}
	statusRows = append(statusRows, []string{
		"Total",
		fmt.Sprintf("%d", grand.InvoiceCount),
		fmt.Sprintf("%d", grand.DistinctUsers),
		fmt.Sprintf("%d", grand.DistinctProperties),
		fmt.Sprintf("%d", grand.DistinctLots),
		formatMoney(grand.AmountSum),
	})
	d.table(statusColumns, statusRows, true)

	d.section("Detalle de facturas")
	detailColumns := []column{
		{title: "Código", width: 24, align: "L"},
		{title: "Lote", width: 26, align: "L"},
		{title: "Documento", width: 24, align: "L"},
		{title: "Cliente", width: 38, align: "L"},
		{title: "Estado", width: 20, align: "C"},
		{title: "Monto", width: 28, align: "R"},
		{title: "Creación", width: 20, align: "C"},
	}
	detailRows := make([][]string, 0, len(report.Invoices))
	for _, inv := range report.Invoices {
		created := inv.CreationDate
		if len(created) > 10 {
			created = created[:10]
		}
		detailRows = append(detailRows, []string{
			truncate(inv.Code, 12),
			truncate(inv.LotCode, 14),
			truncate(inv.ClientDocument, 12),
			truncate(inv.ClientName, 20),
			inv.Status,
			formatMoney(inv.Amount()),
			created,
		})
	}
	d.table(detailColumns, detailRows, false)

	if err := d.chart("Monto por estado", bars); err != nil && !errors.Is(err, ErrNothingToExport) {
		return nil, err
	}
	return d.bytes()
}
