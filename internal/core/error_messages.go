package core

// error_messages.go maps technical errors to messages shown on a file card
// or returned by the API. Each message carries a code users can quote.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid CSV             Patterns: "invalid csv"
//	FILE004 - No file selected        Patterns: "no files uploaded"
//	FILE005 - Empty file              Patterns: "empty file"
//	FILE006 - Unsupported file type   Patterns: "unsupported file type"
//	FILE007 - Invalid workbook        Patterns: "invalid xlsx"
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Fewer than two numeric columns   Patterns: "not enough numeric columns"
//	CHART002 - No rows                          Patterns: "no rows to visualize"
//	CHART003 - Visualization off                Patterns: "visualization is off"
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Column not found         Patterns: "column not found"
//	COL002 - Column selected twice    Patterns: "duplicate column"
//
// # Cleaning and Conversion (CLN, CNV)
//
//	CLN001 - Clean checkbox off       Patterns: "clean data is not enabled"
//	CLN002 - Action log full          Patterns: "too many clean actions"
//	CLN003 - Unknown action           Patterns: "unknown clean action"
//	CNV001 - Not converted            Patterns: "not been converted"
//	CNV002 - Unknown format           Patterns: "unknown conversion format"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired          Patterns: "session not found"
//	SES002 - File not in session      Patterns: "file not found"
//	SES003 - Too many files           Patterns: "too many files"
//	SES004 - Too many sessions        Patterns: "too many active sessions"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy              Patterns: "too many runs"
//	RUN002 - Request cancelled        Patterns: "context canceled"
//	RUN003 - Request timed out        Patterns: "context deadline exceeded"
//	RUN004 - Internal failure         Patterns: "internal error"
//
// # Request Errors
//
//	REQ001 - Malformed form           Patterns: "invalid form"
//
// # Rate Limiting
//
//	RATE001 - Too many requests       Patterns: "rate limit"
//
// ERR000 is the fallback when nothing matches; check the logs for the
// technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Unsupported file type",
			Action:  "Please upload a CSV or Excel file",
			Code:    "FILE006",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Re-save the file as .xlsx and upload it again",
			Code:    "FILE007",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with no row longer than the header",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no files uploaded",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose one or more CSV or Excel files to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with a header row",
			Code:    "FILE005",
		},
	},

	// Chart errors
	{
		pattern: "not enough numeric columns",
		msg: UserMessage{
			Message: "Not enough numeric columns for visualization",
			Action:  "Keep at least two numeric columns selected",
			Code:    "CHART001",
		},
	},
	{
		pattern: "no rows to visualize",
		msg: UserMessage{
			Message: "There are no rows to chart",
			Action:  "Upload a file with data rows",
			Code:    "CHART002",
		},
	},
	{
		pattern: "visualization is off",
		msg: UserMessage{
			Message: "Visualization is turned off for this file",
			Action:  "Tick \"Show visualization\" first",
			Code:    "CHART003",
		},
	},

	// Column errors
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A selected column does not exist",
			Action:  "Pick columns from the list shown for this file",
			Code:    "COL001",
		},
	},
	{
		pattern: "duplicate column",
		msg: UserMessage{
			Message: "A column was selected more than once",
			Action:  "Select each column at most once",
			Code:    "COL002",
		},
	},

	// Cleaning and conversion
	{
		pattern: "clean data is not enabled",
		msg: UserMessage{
			Message: "Cleaning is turned off for this file",
			Action:  "Tick \"Clean data\" to use the cleaning options",
			Code:    "CLN001",
		},
	},
	{
		pattern: "too many clean actions",
		msg: UserMessage{
			Message: "Too many cleaning steps recorded for this file",
			Action:  "Remove the file and upload it again",
			Code:    "CLN002",
		},
	},
	{
		pattern: "unknown clean action",
		msg: UserMessage{
			Message: "Unknown cleaning step",
			Action:  "Use the remove duplicates or fill missing values buttons",
			Code:    "CLN003",
		},
	},
	{
		pattern: "not been converted",
		msg: UserMessage{
			Message: "This file has not been converted yet",
			Action:  "Press Convert before downloading",
			Code:    "CNV001",
		},
	},
	{
		pattern: "unknown conversion format",
		msg: UserMessage{
			Message: "Unknown output format",
			Action:  "Choose CSV or Excel",
			Code:    "CNV002",
		},
	},

	// Session errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Reload the page and upload your files again",
			Code:    "SES001",
		},
	},
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "File is no longer in this session",
			Action:  "Reload the page to see the current files",
			Code:    "SES002",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many files in this session",
			Action:  "Remove some files before uploading more",
			Code:    "SES003",
		},
	},
	{
		pattern: "too many active sessions",
		msg: UserMessage{
			Message: "The server is holding too many sessions",
			Action:  "Please try again later",
			Code:    "SES004",
		},
	},

	// Run errors
	{
		pattern: "too many runs",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Processing timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "RUN003",
		},
	},
	{
		pattern: "internal error",
		msg: UserMessage{
			Message: "The file could not be processed",
			Action:  "Check the file contents or contact support",
			Code:    "RUN004",
		},
	},

	// Request errors
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Reload the page and try again",
			Code:    "REQ001",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. An
// unsupported file type names the offending extension.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ufe *UnsupportedFormatError
	if errors.As(err, &ufe) {
		msg := errorPatterns[0].msg
		msg.Message = ufe.Error()
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
