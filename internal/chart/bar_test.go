package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

func TestBarSVG(t *testing.T) {
	data := &core.ChartData{
		Labels: []string{"0", "1", "2"},
		Series: []core.ChartSeries{
			{Name: "id", Values: []float64{1, 2, 3}},
			{Name: "val", Values: []float64{10, 0, 30}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, BarSVG(&buf, data, Options{Title: "a.csv"}))

	out := buf.String()
	assert.True(t, strings.Contains(out, "<svg"), "output is svg")
	assert.Contains(t, out, "val")
}

func TestBarSVG_NoSeries(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, BarSVG(&buf, &core.ChartData{}, DefaultOptions))
	assert.Error(t, BarSVG(&buf, nil, DefaultOptions))
}

func TestTickLabels(t *testing.T) {
	labels := make([]string, 45)
	for i := range labels {
		labels[i] = "x"
	}
	got := tickLabels(labels)

	shown := 0
	for _, l := range got {
		if l != "" {
			shown++
		}
	}
	assert.Len(t, got, 45)
	assert.LessOrEqual(t, shown, maxTickLabels)
	assert.Equal(t, "x", got[0])
}
