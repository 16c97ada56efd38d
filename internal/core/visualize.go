package core

import (
	"strconv"

	"github.com/go-gota/gota/series"
)

// ChartSeries is one bar series: a column name and its values by row.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartData pairs the first two numeric columns of a table row by row.
type ChartData struct {
	Labels    []string      `json:"labels"`
	Series    []ChartSeries `json:"series"`
	Truncated bool          `json:"truncated"`
	TotalRows int           `json:"totalRows"`
}

// Visualize builds bar chart data from the first two numeric columns of t,
// in table order. Missing cells are charted as zero. At most maxRows rows
// are used when maxRows is positive.
//
// Fewer than two numeric columns returns ErrInsufficientColumnsForChart.
func Visualize(t *Table, maxRows int) (*ChartData, error) {
	numeric := t.NumericColumns()
	if len(numeric) < 2 {
		return nil, ErrInsufficientColumnsForChart
	}
	if t.Rows() == 0 {
		return nil, ErrEmptyChart
	}

	n := t.Rows()
	data := &ChartData{TotalRows: n}
	if maxRows > 0 && n > maxRows {
		n = maxRows
		data.Truncated = true
	}

	data.Labels = make([]string, n)
	for i := range data.Labels {
		data.Labels[i] = strconv.Itoa(i)
	}

	for _, name := range numeric[:2] {
		col := t.column(t.columnIndex(name))
		s := ChartSeries{Name: name, Values: make([]float64, n)}
		for i := 0; i < n; i++ {
			c := cellAt(col, i)
			switch {
			case c.Missing:
			case c.Type == series.Int:
				s.Values[i] = float64(c.Int)
			default:
				s.Values[i] = c.Float
			}
		}
		data.Series = append(data.Series, s)
	}
	return data, nil
}
