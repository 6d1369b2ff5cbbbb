package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var Formats = []string{FormatCSV, FormatXLSX, FormatPDF}

var ErrUnknownFormat = errors.New("unknown export format")

// RowError reports a record that could not be projected. Projection
// continues past failed rows and collects them instead.
type RowError struct {
	Index int    `json:"index"`
	Err   string `json:"error"`
}

// Dataset is a flat, already-projected table ready to be serialized.
type Dataset struct {
	Title   string
	Columns []string
	Rows    [][]string
}

func (ds *Dataset) Append(values ...string) {
	ds.Rows = append(ds.Rows, values)
}

// Write serializes ds to w in the given format.
func Write(w io.Writer, format string, ds Dataset) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, ds)
	case FormatXLSX:
		return writeXLSX(w, ds)
	case FormatPDF:
		return writePDF(w, ds)
	}
	return errors.Wrap(ErrUnknownFormat, format)
}

// ContentType returns the MIME type to serve a format under.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Filename builds a download filename for a format.
func Filename(base, format string) string {
	return fmt.Sprintf("%s.%s", base, format)
}

func writeCSV(w io.Writer, ds Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := cw.WriteAll(ds.Rows); err != nil {
		return errors.Wrap(err, "writing csv rows")
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

func writeXLSX(w io.Writer, ds Dataset) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if ds.Title != "" {
		sheet = ds.Title
		f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet)
	}

	header := make([]interface{}, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing xlsx header")
	}
	for i, row := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "resolving xlsx cell")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrap(err, "writing xlsx row")
		}
	}
	return errors.Wrap(f.Write(w), "writing xlsx")
}

func writePDF(w io.Writer, ds Dataset) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.AddPage()

	if ds.Title != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, ds.Title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(ds.Columns))

	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range ds.Columns {
		pdf.CellFormat(colW, 6, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range ds.Rows {
		for i := 0; i < len(ds.Columns); i++ {
			var v string
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(colW, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return errors.Wrap(pdf.Output(w), "writing pdf")
}
