package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestVisualize_FirstTwoNumericColumns(t *testing.T) {
	tbl := csvTable(t, "name,a,flag,b,c\nx,1,true,2.5,9\ny,,false,4,9\n")

	data, err := Visualize(tbl, 0)
	if err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	if !reflect.DeepEqual(data.Labels, []string{"0", "1"}) {
		t.Errorf("Labels = %v", data.Labels)
	}
	want := []ChartSeries{
		{Name: "a", Values: []float64{1, 0}},
		{Name: "b", Values: []float64{2.5, 4}},
	}
	if !reflect.DeepEqual(data.Series, want) {
		t.Errorf("Series = %+v, want %+v", data.Series, want)
	}
	if data.Truncated {
		t.Error("Truncated = true with no cap")
	}
}

func TestVisualize_NotEnoughNumericColumns(t *testing.T) {
	tests := []string{
		"name,a\nx,1\n",
		"name,flag\nx,true\n",
	}
	for _, in := range tests {
		data, err := Visualize(csvTable(t, in), 0)
		if !errors.Is(err, ErrInsufficientColumnsForChart) {
			t.Errorf("Visualize(%q) error = %v, want ErrInsufficientColumnsForChart", in, err)
		}
		if data != nil {
			t.Errorf("Visualize(%q) returned chart data", in)
		}
	}
}

func TestVisualize_RowCap(t *testing.T) {
	tbl := csvTable(t, "a,b\n1,2\n3,4\n5,6\n")

	data, err := Visualize(tbl, 2)
	if err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	if !data.Truncated || data.TotalRows != 3 || len(data.Labels) != 2 {
		t.Errorf("got truncated=%v total=%d labels=%d, want true 3 2", data.Truncated, data.TotalRows, len(data.Labels))
	}
}

func TestVisualize_UsesProjectedTable(t *testing.T) {
	tbl := csvTable(t, "a,b,c\n1,2,3\n")
	projected, err := tbl.Project([]string{"c", "a"})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	data, err := Visualize(projected, 0)
	if err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	if data.Series[0].Name != "c" || data.Series[1].Name != "a" {
		t.Errorf("series = %s,%s, want c,a", data.Series[0].Name, data.Series[1].Name)
	}
}
