package core

import (
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    ConversionChoice
		wantErr bool
	}{
		{"data.csv", CSV, false},
		{"Data.XLSX", Excel, false},
		{"archive.tar.csv", CSV, false},
		{"notes.txt", "", true},
		{"book.xls", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		f, err := DetectFormat(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if f.Choice != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.name, f.Choice, tt.want)
		}
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in   string
		want ConversionChoice
	}{
		{"csv", CSV},
		{"CSV", CSV},
		{"Excel", Excel},
		{"xlsx", Excel},
		{" excel ", Excel},
	}
	for _, tt := range tests {
		got, err := ParseChoice(tt.in)
		if err != nil {
			t.Errorf("ParseChoice(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChoice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseChoice("pdf"); err == nil {
		t.Error("ParseChoice(pdf) succeeded, want error")
	}
}

func TestOutputName(t *testing.T) {
	csvFormat, _ := FormatFor(CSV)
	xlsxFormat, _ := FormatFor(Excel)

	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{"report.xlsx", csvFormat, "report.csv"},
		{"report.csv", xlsxFormat, "report.xlsx"},
		{"my.data.csv", xlsxFormat, "my.data.xlsx"},
		{"noext", csvFormat, "noext.csv"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.name, tt.format); got != tt.want {
			t.Errorf("OutputName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAcceptedExtensions(t *testing.T) {
	if got := AcceptedExtensions(); got != ".csv,.xlsx" {
		t.Errorf("AcceptedExtensions() = %q, want .csv,.xlsx", got)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register of a duplicate choice did not panic")
		}
	}()
	f, _ := FormatFor(CSV)
	Register(f)
}
