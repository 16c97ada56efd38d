package core

import (
	"bytes"
	"io"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,val")...),
			expected: "id,val",
		},
		{
			name:     "file without BOM",
			input:    []byte("id,val"),
			expected: "id,val",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM kept",
			input:    []byte{0xEF, 0xBB, 'a', 'b'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(newBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", string(got), tt.expected)
			}
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"valid UTF-8 unchanged", []byte("hello world"), "hello world"},
		{"empty input", []byte{}, ""},
		{"valid unicode", []byte("hello \xe4\xb8\x96\xe7\x95\x8c"), "hello \xe4\xb8\x96\xe7\x95\x8c"},
		{"invalid byte replaced", []byte{0x80}, "�"},
		{"truncated multibyte sequence", []byte{0xc3}, "�"},
		{"mixed valid and invalid", []byte("a,b\x80c"), "a,b�c"},
		{"multiple invalid bytes", []byte{0x80, 0x81}, "��"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(sanitizeUTF8(tt.input)); got != tt.want {
				t.Errorf("sanitizeUTF8() = %q, want %q", got, tt.want)
			}
		})
	}
}
