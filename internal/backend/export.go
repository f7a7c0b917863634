package backend

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/repository"
	apperrors "github.com/spec-kit/ticket-console/pkg/util/errorutil"
)

// exportLimit bounds how many tickets one export renders.
const exportLimit = 10000

var exportColumns = []string{"ticket_id", "title", "status", "priority", "ticket_type", "assigned_agent", "customer_email", "created_at", "updated_at"}

// RenderedExport is an export document and how it should be served.
type RenderedExport struct {
	ContentType string
	// Disposition is empty when the document is served without a filename.
	Disposition string
	Data        []byte
}

// Export renders the tickets matching filter. CSV carries an RFC 5987 filename,
// XLSX a quoted one, and PDF none.
func (d *TicketDesk) Export(ctx context.Context, format domain.ExportFormat, filter repository.TicketFilter) (RenderedExport, error) {
	filter.Limit = exportLimit
	filter.Offset = 0
	tickets, _, err := d.tickets.List(ctx, filter)
	if err != nil {
		return RenderedExport{}, err
	}
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, exportRow(t))
	}
	stamp := d.now().UTC().Format("20060102_150405")

	switch format {
	case domain.ExportFormatCSV, "":
		data, err := renderCSV(rows)
		if err != nil {
			return RenderedExport{}, apperrors.NewInternalError(err)
		}
		return RenderedExport{
			ContentType: "text/csv; charset=utf-8",
			Disposition: fmt.Sprintf("attachment; filename*=UTF-8''tickets_%s.csv", stamp),
			Data:        data,
		}, nil
	case domain.ExportFormatXLSX:
		data, err := renderXLSX(rows)
		if err != nil {
			return RenderedExport{}, apperrors.NewInternalError(err)
		}
		return RenderedExport{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Disposition: fmt.Sprintf(`attachment; filename="tickets_%s.xlsx"`, stamp),
			Data:        data,
		}, nil
	case domain.ExportFormatPDF:
		data, err := renderPDF(rows, d.now())
		if err != nil {
			return RenderedExport{}, apperrors.NewInternalError(err)
		}
		return RenderedExport{ContentType: "application/pdf", Data: data}, nil
	}
	return RenderedExport{}, apperrors.NewValidationError("unsupported export format", map[string]any{"format": format})
}

func exportRow(t domain.Ticket) []string {
	email := ""
	if t.Customer != nil {
		email = deref(t.Customer.Email)
	}
	agent := deref(t.AssignedAgentName)
	if agent == "" {
		agent = deref(t.AssignedAgentID)
	}
	return []string{
		t.TicketID,
		t.Title,
		string(t.Status),
		string(t.Priority),
		string(t.TicketType),
		agent,
		email,
		t.CreatedAt.Time().UTC().Format(time.RFC3339),
		t.UpdatedAt.Time().UTC().Format(time.RFC3339),
	}
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Tickets"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	write := func(rowIndex int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIndex)
		if err != nil {
			return err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(sheet, cell, &row)
	}
	if err := write(1, exportColumns); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := write(i+2, r); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(rows [][]string, now time.Time) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Ticket export "+now.UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")

	widths := []float64{28, 70, 25, 20, 22, 35, 50, 0}
	pdf.SetFont("Helvetica", "B", 9)
	for i, col := range exportColumns[:len(widths)] {
		ln := 0
		if i == len(widths)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, col, "1", ln, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		for i := range widths {
			ln := 0
			if i == len(widths)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[i], 6, tr(r[i]), "1", ln, "L", false, 0, "")
		}
	}
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 8, strconv.Itoa(len(rows))+" tickets", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
