package core

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ConversionChoice is the export format picked for a file.
type ConversionChoice string

const (
	CSV   ConversionChoice = "csv"
	Excel ConversionChoice = "excel"
)

// Format describes one supported file format: how to recognise it, read it
// into a Table, and write a Table back out.
type Format struct {
	Choice ConversionChoice
	Label  string // shown on the format radio
	Ext    string // lower-case, with the leading dot
	MIME   string
	Parse  func(r io.Reader) (*Table, error)
	Write  func(w io.Writer, t *Table) error
}

var (
	registry   = make(map[ConversionChoice]Format)
	registryMu sync.RWMutex
)

func init() {
	Register(Format{
		Choice: CSV,
		Label:  "CSV",
		Ext:    ".csv",
		MIME:   "text/csv",
		Parse:  ParseCSV,
		Write:  WriteCSV,
	})
	Register(Format{
		Choice: Excel,
		Label:  "Excel",
		Ext:    ".xlsx",
		MIME:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Parse:  ParseExcel,
		Write:  WriteExcel,
	})
}

// Register adds a format to the registry.
// Panics if the choice or extension is already registered.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[f.Choice]; exists {
		panic(fmt.Sprintf("format already registered: %s", f.Choice))
	}
	for _, other := range registry {
		if other.Ext == f.Ext {
			panic(fmt.Sprintf("extension already registered: %s", f.Ext))
		}
	}
	registry[f.Choice] = f
}

// FormatFor returns the format for a conversion choice.
func FormatFor(choice ConversionChoice) (Format, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[choice]
	return f, ok
}

// Formats returns all registered formats sorted by label.
func Formats() []Format {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Format, 0, len(registry))
	for _, f := range registry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// AcceptedExtensions lists the upload extensions, e.g. ".csv,.xlsx".
func AcceptedExtensions() string {
	formats := Formats()
	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = f.Ext
	}
	sort.Strings(exts)
	return strings.Join(exts, ",")
}

// DetectFormat picks a format from a file name's extension, ignoring case.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, f := range registry {
		if f.Ext == ext {
			return f, nil
		}
	}
	return Format{}, &UnsupportedFormatError{Ext: ext}
}

// ParseChoice reads a conversion choice from user input. It accepts the
// choice name, the label, or the extension, in any case.
func ParseChoice(s string) (ConversionChoice, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats() {
		if s == string(f.Choice) || s == strings.ToLower(f.Label) || s == strings.TrimPrefix(f.Ext, ".") {
			return f.Choice, nil
		}
	}
	return "", fmt.Errorf("unknown conversion format: %q", s)
}

// OutputName replaces the extension of name with the one for choice.
func OutputName(name string, f Format) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + f.Ext
}
