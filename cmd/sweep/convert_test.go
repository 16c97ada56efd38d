package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datasweeper/internal/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileState(t *testing.T) {
	st, err := convertOptions{Dedupe: true, Impute: true, Columns: []string{"a"}, Format: "Excel", Chart: true}.fileState()
	require.NoError(t, err)
	assert.True(t, st.Clean)
	assert.Equal(t, []core.CleanAction{core.ActionDedupe, core.ActionImpute}, st.Actions)
	assert.Equal(t, []string{"a"}, st.Columns)
	assert.True(t, st.Visualize)
	assert.True(t, st.Convert)
	assert.Equal(t, core.Excel, st.Format)

	st, err = convertOptions{Format: "csv"}.fileState()
	require.NoError(t, err)
	assert.False(t, st.Clean)
	assert.Nil(t, st.Columns)

	_, err = convertOptions{Format: "pdf"}.fileState()
	assert.Error(t, err)
}

func TestRunConvert(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "clean")
	src := writeFile(t, in, "a.csv", "id,val\n1,10\n1,10\n2,NA\n")

	var stdout, stderr bytes.Buffer
	opts := convertOptions{Dedupe: true, Impute: true, Format: "csv", OutDir: out, Chart: true, ChartRows: 100}
	require.NoError(t, runConvert(context.Background(), []string{src}, opts, &stdout, &stderr))

	got, err := os.ReadFile(filepath.Join(out, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,val\n1,10\n2,10\n", string(got))

	svg, err := os.ReadFile(filepath.Join(out, "a.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	assert.Contains(t, stdout.String(), "Duplicates removed! (1 rows)")
	assert.Contains(t, stdout.String(), "Missing values filled! (1 cells)")
	assert.Empty(t, stderr.String())
}

func TestRunConvert_UnsupportedFileFails(t *testing.T) {
	in := t.TempDir()
	good := writeFile(t, in, "a.csv", "x,y\n1,2\n")
	bad := writeFile(t, in, "b.txt", "hello")

	var stdout, stderr bytes.Buffer
	opts := convertOptions{Format: "excel", OutDir: t.TempDir()}
	err := runConvert(context.Background(), []string{good, bad}, opts, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, stderr.String(), "unsupported file type: .txt")
	assert.FileExists(t, filepath.Join(opts.OutDir, "a.xlsx"))
}

func TestRunConvert_RefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.csv", "x\n1\n")

	var stdout, stderr bytes.Buffer
	opts := convertOptions{Format: "csv", OutDir: dir}
	require.Error(t, runConvert(context.Background(), []string{src}, opts, &stdout, &stderr))

	opts.Force = true
	require.NoError(t, runConvert(context.Background(), []string{src}, opts, &stdout, &stderr))
}
