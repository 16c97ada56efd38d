package core

// ingest.go turns uploaded bytes into a Table.
//
// Both formats are reduced to a [][]string grid (header first) and handed to
// gota's LoadRecords, which infers column types. Cells matching
// missingMarkers become NaN elements, which is how missing values are
// represented everywhere else in the package.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// UploadedFile is one file received from the browser or read from disk.
type UploadedFile struct {
	ID   string
	Name string
	Data []byte
}

// Size returns the file size in bytes.
func (f UploadedFile) Size() int64 {
	return int64(len(f.Data))
}

// missingMarkers are the cell values treated as missing on load.
var missingMarkers = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<nil>", "#N/A"}

// nanCell is how gota spells a missing value in its input records.
const nanCell = "NaN"

func isMissingMarker(v string) bool {
	for _, m := range missingMarkers {
		if v == m {
			return true
		}
	}
	return false
}

// Ingest detects the format of f from its name and parses it.
// An unsupported extension returns an *UnsupportedFormatError.
func Ingest(f UploadedFile) (*Table, Format, error) {
	format, err := DetectFormat(f.Name)
	if err != nil {
		return nil, Format{}, err
	}
	t, err := format.Parse(bytes.NewReader(f.Data))
	if err != nil {
		return nil, format, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return t, format, nil
}

// ParseCSV reads comma-separated data with a header row.
func ParseCSV(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(newBOMSkippingReader(r))
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	raw = sanitizeUTF8(raw)

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	width := len(records[0])
	for i, rec := range records[1:] {
		if len(rec) > width {
			return nil, fmt.Errorf("invalid csv: line %d has %d fields, header has %d", i+2, len(rec), width)
		}
	}
	return loadRecords(records)
}

// ParseExcel reads the first sheet of an .xlsx workbook.
func ParseExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: read sheet %q: %w", sheet, err)
	}

	// Raw values render booleans as 0/1; restore them so they are not
	// inferred as integers.
	for i, row := range rows {
		for j, v := range row {
			if v != "0" && v != "1" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			if ct, err := f.GetCellType(sheet, cell); err == nil && ct == excelize.CellTypeBool {
				row[j] = map[string]string{"0": "false", "1": "true"}[v]
			}
		}
	}

	rows = dropBlankRecords(rows)
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return loadRecords(rows)
}

// loadRecords pads ragged rows to the header width and builds a Table with
// inferred column types.
func loadRecords(records [][]string) (*Table, error) {
	header := records[0]
	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	if width == 0 {
		return nil, ErrEmptyFile
	}

	grid := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, width)
		for j := range row {
			if j < len(rec) {
				row[j] = rec[j]
			}
			// Type detection only skips "NaN", so markers are normalized
			// before gota sees them.
			if i > 0 && isMissingMarker(strings.TrimSpace(row[j])) {
				row[j] = nanCell
			}
		}
		grid[i] = row
	}
	for j := len(header); j < width; j++ {
		grid[0][j] = fmt.Sprintf("Unnamed: %d", j)
	}

	// LoadRecords refuses a header with no data rows.
	if len(grid) == 1 {
		cols := make([]series.Series, width)
		for j, name := range grid[0] {
			cols[j] = series.New([]string{}, series.String, name)
		}
		return NewTable(cols...)
	}

	types := make(map[string]series.Type)
	for j := 0; j < width; j++ {
		trimNumericColumn(grid, j)
		if allMissing(grid, j) && uniqueHeader(grid[0], j) {
			types[grid[0][j]] = series.Float
		}
	}

	df := dataframe.LoadRecords(grid,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{nanCell}),
		dataframe.WithTypes(types),
	)
	t, err := newTable(df)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return t, nil
}

// trimNumericColumn strips surrounding spaces from column j when every
// present value is a number once trimmed, so " 1" loads as 1. Any other
// column keeps its values exactly as read.
func trimNumericColumn(grid [][]string, j int) {
	for _, row := range grid[1:] {
		if row[j] == nanCell {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64); err != nil {
			return
		}
	}
	for _, row := range grid[1:] {
		row[j] = strings.TrimSpace(row[j])
	}
}

// allMissing reports whether column j has no present values. Such a column
// loads as float so it counts as numeric.
func allMissing(grid [][]string, j int) bool {
	for _, row := range grid[1:] {
		if row[j] != nanCell {
			return false
		}
	}
	return true
}

func uniqueHeader(header []string, j int) bool {
	for i, name := range header {
		if i != j && name == header[j] {
			return false
		}
	}
	return true
}

// dropBlankRecords removes trailing rows whose cells are all blank. Sheets
// often carry formatted but empty rows past the data.
func dropBlankRecords(records [][]string) [][]string {
	end := len(records)
	for end > 0 && isBlankRecord(records[end-1]) {
		end--
	}
	return records[:end]
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// IsUnsupported reports whether err came from an unsupported extension.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}
