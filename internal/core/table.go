package core

// table.go wraps a gota DataFrame with the handful of operations the sweeper
// needs: typed cell access, numeric column discovery, head/preview and
// projection.
//
// A Table is treated as immutable. Every transformation returns a new Table,
// so a Table handed to the export stage can never be changed underneath it.

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is an in-memory tabular structure with ordered named columns.
type Table struct {
	df dataframe.DataFrame

	// nrows survives projections to zero columns, where the DataFrame
	// itself is empty.
	nrows int
}

// newTable wraps a DataFrame, surfacing any error gota accumulated.
func newTable(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	return &Table{df: df, nrows: df.Nrow()}, nil
}

// NewTable builds a Table from gota series. All series must share a length.
// With no series the result is an empty table with no rows.
func NewTable(cols ...series.Series) (*Table, error) {
	if len(cols) == 0 {
		return &Table{}, nil
	}
	return newTable(dataframe.New(cols...))
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return t.nrows
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return t.df.Ncol()
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	if t.Width() == 0 {
		return []string{}
	}
	return t.df.Names()
}

// Types returns the inferred element type of each column in table order.
func (t *Table) Types() []series.Type {
	if t.Width() == 0 {
		return []series.Type{}
	}
	return t.df.Types()
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	return t.columnIndex(name) >= 0
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns() {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnType returns the inferred type of a column.
func (t *Table) ColumnType(name string) (series.Type, error) {
	i := t.columnIndex(name)
	if i < 0 {
		return "", fmt.Errorf("column not found: %q", name)
	}
	return t.Types()[i], nil
}

// isNumericType reports whether a gota type counts as numeric.
// Bool columns are not numeric.
func isNumericType(typ series.Type) bool {
	return typ == series.Int || typ == series.Float
}

// NumericColumns returns the numeric-typed columns in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	types := t.Types()
	for i, name := range t.Columns() {
		if isNumericType(types[i]) {
			out = append(out, name)
		}
	}
	return out
}

// column returns the series for a column by position.
func (t *Table) column(i int) series.Series {
	return t.df.Col(t.Columns()[i])
}

// Cell is a single typed value read from a Table.
type Cell struct {
	Type    series.Type
	Missing bool
	Int     int
	Float   float64
	Bool    bool
	Str     string
}

// String formats a cell for CSV output and display. Missing cells are empty.
// Floats keep a fractional part so a round trip through CSV re-infers them
// as floats.
func (c Cell) String() string {
	if c.Missing {
		return ""
	}
	switch c.Type {
	case series.Int:
		return strconv.Itoa(c.Int)
	case series.Float:
		return formatFloat(c.Float)
	case series.Bool:
		return strconv.FormatBool(c.Bool)
	default:
		return c.Str
	}
}

// Value returns the cell as a Go value suitable for a spreadsheet cell.
// Missing cells return nil.
func (c Cell) Value() any {
	if c.Missing {
		return nil
	}
	switch c.Type {
	case series.Int:
		return c.Int
	case series.Float:
		return c.Float
	case series.Bool:
		return c.Bool
	default:
		return c.Str
	}
}

// missingKey is the key of a missing cell. Present cells are quoted, so no
// value can produce it.
const missingKey = "NA"

// key returns a self-delimiting representation that is equal for equal
// cells, including missing ones.
func (c Cell) key() string {
	if c.Missing {
		return missingKey
	}
	if c.Type == series.Float {
		return strconv.Quote(strconv.FormatFloat(c.Float, 'g', -1, 64))
	}
	return strconv.Quote(c.String())
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

// cellAt reads one element of a series.
func cellAt(s series.Series, row int) Cell {
	e := s.Elem(row)
	c := Cell{Type: s.Type()}
	if e.IsNA() {
		c.Missing = true
		return c
	}
	switch c.Type {
	case series.Int:
		v, err := e.Int()
		if err != nil {
			c.Missing = true
			return c
		}
		c.Int = v
	case series.Float:
		c.Float = e.Float()
	case series.Bool:
		v, err := e.Bool()
		if err != nil {
			c.Missing = true
			return c
		}
		c.Bool = v
	default:
		c.Str = e.String()
	}
	return c
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Cell {
	width := t.Width()
	cells := make([]Cell, width)
	for j := 0; j < width; j++ {
		cells[j] = cellAt(t.column(j), i)
	}
	return cells
}

// Records returns the header followed by every row formatted as strings.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.nrows+1)
	out = append(out, t.Columns())
	for i := 0; i < t.nrows; i++ {
		cells := t.Row(i)
		rec := make([]string, len(cells))
		for j, c := range cells {
			rec[j] = c.String()
		}
		out = append(out, rec)
	}
	return out
}

// Head returns a table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n >= t.nrows {
		return t
	}
	if t.Width() == 0 {
		return &Table{nrows: n}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return &Table{df: t.df.Subset(idx), nrows: n}
}

// subset keeps the rows at the given positions, in order.
func (t *Table) subset(idx []int) (*Table, error) {
	if t.Width() == 0 {
		return &Table{nrows: len(idx)}, nil
	}
	df := t.df.Subset(idx)
	if df.Err != nil {
		return nil, fmt.Errorf("subset rows: %w", df.Err)
	}
	return &Table{df: df, nrows: len(idx)}, nil
}

// Project returns a table containing only cols, in the order given.
// An empty selection yields a table with no columns and the same row count.
func (t *Table) Project(cols []string) (*Table, error) {
	if len(cols) == 0 {
		return &Table{nrows: t.nrows}, nil
	}

	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("column not found: %q", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate column in selection: %q", c)
		}
		seen[c] = true
	}

	df := t.df.Select(cols)
	if df.Err != nil {
		return nil, fmt.Errorf("project columns: %w", df.Err)
	}
	return &Table{df: df, nrows: t.nrows}, nil
}

// Equal reports whether two tables have the same columns, types and cells.
func (t *Table) Equal(o *Table) bool {
	if t.nrows != o.nrows || t.Width() != o.Width() {
		return false
	}
	ac, bc := t.Columns(), o.Columns()
	at, bt := t.Types(), o.Types()
	for i := range ac {
		if ac[i] != bc[i] || at[i] != bt[i] {
			return false
		}
	}
	for i := 0; i < t.nrows; i++ {
		ar, br := t.Row(i), o.Row(i)
		for j := range ar {
			if ar[j].key() != br[j].key() {
				return false
			}
		}
	}
	return true
}

// String renders the table using gota's text layout.
func (t *Table) String() string {
	if t.Width() == 0 {
		return fmt.Sprintf("[%dx0] empty table\n", t.nrows)
	}
	return t.df.String()
}
