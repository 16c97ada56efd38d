package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// excelSheet is the name of the single sheet written to exported workbooks.
const excelSheet = "Sheet1"

// Download is a serialized table ready to be offered to the user.
type Download struct {
	FileName string
	MIME     string
	Data     []byte
}

// Export serializes t in the chosen format and derives the download name
// from originalName. The table is only read.
func Export(t *Table, choice ConversionChoice, originalName string) (*Download, error) {
	format, ok := FormatFor(choice)
	if !ok {
		return nil, fmt.Errorf("unknown conversion format: %q", choice)
	}

	var buf bytes.Buffer
	if err := format.Write(&buf, t); err != nil {
		return nil, fmt.Errorf("export %s: %w", format.Label, err)
	}

	return &Download{
		FileName: OutputName(originalName, format),
		MIME:     format.MIME,
		Data:     buf.Bytes(),
	}, nil
}

// WriteCSV writes the header and rows without an index column. A table with
// no columns produces an empty body.
func WriteCSV(w io.Writer, t *Table) error {
	if t.Width() == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteExcel writes t to a single-sheet workbook with a bold header row.
// Missing cells are left blank. A table with no columns produces a workbook
// with one empty sheet.
func WriteExcel(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if t.Width() > 0 {
		for j, name := range t.Columns() {
			cell, err := excelize.CoordinatesToCellName(j+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(excelSheet, cell, name); err != nil {
				return fmt.Errorf("write header %q: %w", name, err)
			}
		}

		headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		if err := f.SetRowStyle(excelSheet, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("header style: %w", err)
		}

		for i := 0; i < t.Rows(); i++ {
			for j, c := range t.Row(i) {
				v := c.Value()
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(j+1, i+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(excelSheet, cell, v); err != nil {
					return fmt.Errorf("write cell %s: %w", cell, err)
				}
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
