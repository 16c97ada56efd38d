package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"testing"
)

// ============================================================================
// UTF-8 Sanitization Benchmarks
// ============================================================================

func BenchmarkSanitizeUTF8_Valid(b *testing.B) {
	data := bytes.Repeat([]byte("Valid UTF-8 line with numbers 12345\n"), 300)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sanitizeUTF8(data)
	}
}

func BenchmarkSanitizeUTF8_Invalid(b *testing.B) {
	data := bytes.Repeat([]byte("caf\xe9 au lait,1.5\n"), 300)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sanitizeUTF8(data)
	}
}

// ============================================================================
// Ingest Benchmarks
// ============================================================================

// BenchmarkParseCSV measures parsing plus type inference.
func BenchmarkParseCSV(b *testing.B) {
	data := generateTestCSV(100)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseCSV(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseCSV_Large(b *testing.B) {
	data := generateTestCSV(10000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseCSV(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseExcel(b *testing.B) {
	t := benchTable(b, 1000)
	var buf bytes.Buffer
	if err := WriteExcel(&buf, t); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseExcel(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Cleaning Benchmarks
// ============================================================================

func BenchmarkDeduplicate(b *testing.B) {
	t := benchTable(b, 5000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := Deduplicate(t); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkImputeMean(b *testing.B) {
	t := benchTable(b, 5000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := ImputeMean(t); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Export Benchmarks
// ============================================================================

func BenchmarkWriteCSV(b *testing.B) {
	t := benchTable(b, 5000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := WriteCSV(io.Discard, t); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteExcel(b *testing.B) {
	t := benchTable(b, 1000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := WriteExcel(io.Discard, t); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

// BenchmarkPipelineRun replays the full widget sequence on every run, which
// is what each interaction costs.
func BenchmarkPipelineRun(b *testing.B) {
	f := UploadedFile{ID: "bench", Name: "bench.csv", Data: generateTestCSV(1000)}
	st := FileState{
		Clean:     true,
		Actions:   []CleanAction{ActionDedupe, ActionImpute},
		Visualize: true,
		Format:    Excel,
		Convert:   true,
	}
	p := NewPipeline(DefaultPreviewRows, 100)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		res := p.Run(ctx, f, st)
		if res.Err != nil || res.ExportErr != nil {
			b.Fatalf("run failed: %v %v", res.Err, res.ExportErr)
		}
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

// generateTestCSV generates CSV data with the specified number of rows. Every
// tenth row repeats the previous one and every seventh has a missing amount.
func generateTestCSV(rows int) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"id", "name", "amount", "quantity", "status"})

	prev := []string{"0", "Name 0", "0.00", "0", "active"}
	for i := 0; i < rows; i++ {
		if i%10 == 9 {
			w.Write(prev)
			continue
		}
		amount := fmt.Sprintf("%d.%02d", i*3, i%100)
		if i%7 == 6 {
			amount = ""
		}
		rec := []string{
			fmt.Sprint(i + 1),
			fmt.Sprintf("Name %d", i%50),
			amount,
			fmt.Sprint(i % 13),
			"active",
		}
		w.Write(rec)
		prev = rec
	}
	w.Flush()

	return buf.Bytes()
}

func benchTable(b *testing.B, rows int) *Table {
	b.Helper()
	t, err := ParseCSV(bytes.NewReader(generateTestCSV(rows)))
	if err != nil {
		b.Fatal(err)
	}
	return t
}
