package core

// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. The console server and the CLI print the code so a
// failing import can be traced in the logs.
//
// # Remote API Errors (API001-API099)
//
//	API001 - Backend unreachable: "connection refused", "no such host"
//	API002 - Backend timeout: "context deadline exceeded", "timeout"
//	API003 - Not found: "resource not found"
//	API004 - Connection interrupted: "connection reset", "eof"
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Type mismatch: "csv type mismatch"
//	CSV002 - Unknown type: "unknown record kind"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: "file too large"
//	FILE003 - Encoding error: "undecodable file encoding"
//	FILE004 - No file: "no file provided"
//	FILE005 - Empty file: "empty file"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: "too many concurrent imports"
//	IMP002 - Request cancelled: "context canceled"
//
// # Report Errors (RPT001-RPT099)
//
//	RPT001 - Invalid workbook: "invalid workbook"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests: "rate limit"
//
// Anything else maps to ERR000.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	// Import gate
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "csv type mismatch",
		msg: UserMessage{
			Message: "The file does not match the selected type",
			Action:  "Check that the header row matches the expected columns",
			Code:    "CSV001",
		},
	},
	{
		pattern: "unknown record kind",
		msg: UserMessage{
			Message: "Unknown file type",
			Action:  "Use one of: products, categories, sales",
			Code:    "CSV002",
		},
	},

	// File handling
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "undecodable file encoding",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},

	// Remote API transport
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The backend took too long to respond",
			Action:  "Please try again later",
			Code:    "API002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The backend took too long to respond",
			Action:  "Please try again later",
			Code:    "API002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the backend",
			Action:  "Check that the API is running and SMARTMART_API_URL is correct",
			Code:    "API001",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Unable to reach the backend",
			Action:  "Check that the API is running and SMARTMART_API_URL is correct",
			Code:    "API001",
		},
	},
	{
		pattern: "resource not found",
		msg: UserMessage{
			Message: "The requested record does not exist",
			Action:  "Refresh the list and try again",
			Code:    "API003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Connection to the backend was interrupted",
			Action:  "Please try again",
			Code:    "API004",
		},
	},

	// Reports
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "The report file is not a valid spreadsheet",
			Action:  "Please try the export again",
			Code:    "RPT001",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches the known patterns (case-insensitive) and returns the first
// match, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
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
