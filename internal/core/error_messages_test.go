package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unsupported extension is named",
			err:         &UnsupportedFormatError{Ext: ".txt"},
			wantCode:    "FILE006",
			wantMessage: "unsupported file type: .txt",
		},
		{
			name:        "wrapped unsupported extension",
			err:         fmt.Errorf("ingest: %w", &UnsupportedFormatError{Ext: ".json"}),
			wantCode:    "FILE006",
			wantMessage: "unsupported file type: .json",
		},
		{
			name:        "invalid csv",
			err:         errors.New("parse a.csv: invalid csv: line 3 has 4 fields, header has 2"),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "invalid xlsx",
			err:         errors.New("parse a.xlsx: invalid xlsx: zip: not a valid zip file"),
			wantCode:    "FILE007",
			wantMessage: "File is not a valid Excel workbook",
		},
		{
			name:        "empty file",
			err:         fmt.Errorf("parse a.csv: %w", ErrEmptyFile),
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "chart warning",
			err:         ErrInsufficientColumnsForChart,
			wantCode:    "CHART001",
			wantMessage: "Not enough numeric columns for visualization",
		},
		{
			name:        "session expired",
			err:         ErrSessionNotFound,
			wantCode:    "SES001",
			wantMessage: "Your session has expired",
		},
		{
			name:        "file not found is not a session error",
			err:         ErrFileNotFound,
			wantCode:    "SES002",
			wantMessage: "File is no longer in this session",
		},
		{
			name:        "run limiter",
			err:         ErrTooManyRuns,
			wantCode:    "RUN001",
			wantMessage: "System is busy processing other files",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "RUN003",
			wantMessage: "Processing timed out",
		},
		{
			name:        "not converted",
			err:         ErrNotConverted,
			wantCode:    "CNV001",
			wantMessage: "This file has not been converted yet",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("RATE LIMIT exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal failure"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrNotConverted)
	want := "This file has not been converted yet (Code: CNV001). Press Convert before downloading"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrEmptyFile, true},
		{"unknown error is not user facing", errors.New("random failure xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	ue := NewUserError(ErrTooManyFiles)
	if ue.Error() != "Too many files in this session" {
		t.Errorf("Error() = %q, want user message", ue.Error())
	}
	if !errors.Is(ue, ErrTooManyFiles) {
		t.Error("Unwrap() should return original error")
	}
}
