package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/montanaflynn/stats"
)

// CleanAction is one user-triggered cleaning operation.
type CleanAction string

const (
	ActionDedupe CleanAction = "dedupe"
	ActionImpute CleanAction = "impute"
)

// Deduplicate removes rows equal on every column to an earlier row, keeping
// the first occurrence. Missing cells compare equal to each other. It returns
// the cleaned table and the number of rows removed.
func Deduplicate(t *Table) (*Table, int, error) {
	if t.Rows() < 2 {
		return t, 0, nil
	}

	seen := make(map[string]struct{}, t.Rows())
	keep := make([]int, 0, t.Rows())
	var key strings.Builder
	for i := 0; i < t.Rows(); i++ {
		key.Reset()
		for _, c := range t.Row(i) {
			key.WriteString(c.key())
			key.WriteByte(',')
		}
		k := key.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}

	removed := t.Rows() - len(keep)
	if removed == 0 {
		return t, 0, nil
	}
	out, err := t.subset(keep)
	if err != nil {
		return nil, 0, fmt.Errorf("deduplicate: %w", err)
	}
	return out, removed, nil
}

// ImputeReport describes what ImputeMean changed.
type ImputeReport struct {
	// Filled maps a column to the number of cells filled in it.
	Filled map[string]int
	// Means maps a filled column to the mean used.
	Means map[string]float64
	// Skipped lists numeric columns with missing cells but no present value
	// to average; they are left as they were.
	Skipped []string
}

// Total returns the number of cells filled across all columns.
func (r ImputeReport) Total() int {
	n := 0
	for _, c := range r.Filled {
		n += c
	}
	return n
}

// ImputeMean replaces missing cells in every numeric column with the mean
// of that column's present values. Non-numeric columns are untouched.
//
// An int column stays int when its mean is a whole number and is promoted
// to float otherwise.
func ImputeMean(t *Table) (*Table, ImputeReport, error) {
	report := ImputeReport{Filled: map[string]int{}, Means: map[string]float64{}}
	out := t

	types := t.Types()
	for i, name := range t.Columns() {
		if !isNumericType(types[i]) {
			continue
		}
		col := t.column(i)
		missing := col.IsNaN()

		var present []float64
		nMissing := 0
		for row, isMissing := range missing {
			if isMissing {
				nMissing++
				continue
			}
			present = append(present, col.Elem(row).Float())
		}
		if nMissing == 0 {
			continue
		}
		if len(present) == 0 {
			report.Skipped = append(report.Skipped, name)
			continue
		}

		mean, err := stats.Mean(present)
		if err != nil {
			return nil, report, fmt.Errorf("mean of %q: %w", name, err)
		}

		filled := fillSeries(col, missing, mean)
		df := out.df.Mutate(filled)
		if df.Err != nil {
			return nil, report, fmt.Errorf("fill %q: %w", name, df.Err)
		}
		out = &Table{df: df, nrows: t.nrows}

		report.Filled[name] = nMissing
		report.Means[name] = mean
	}
	return out, report, nil
}

// fillSeries returns a copy of col with missing positions set to mean.
func fillSeries(col series.Series, missing []bool, mean float64) series.Series {
	if col.Type() == series.Int && mean == math.Trunc(mean) && math.Abs(mean) < 1<<53 {
		vals := make([]int, col.Len())
		for i := range vals {
			if missing[i] {
				vals[i] = int(mean)
				continue
			}
			v, _ := col.Elem(i).Int()
			vals[i] = v
		}
		return series.New(vals, series.Int, col.Name)
	}

	vals := make([]float64, col.Len())
	for i := range vals {
		if missing[i] {
			vals[i] = mean
			continue
		}
		vals[i] = col.Elem(i).Float()
	}
	return series.New(vals, series.Float, col.Name)
}
