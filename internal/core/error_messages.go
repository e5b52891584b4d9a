package core

import "strings"

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Patterns are matched with strings.Contains; the first match
// wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// Database constraint errors (DB001-DB003)
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "A customer with this email already exists",
			Action:  "Check your CSV for duplicate email addresses",
			Code:    "DB001",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Referenced customer does not exist",
			Action:  "Import customers before their orders",
			Code:    "DB002",
		},
	},
	{
		pattern: "quantity must be between",
		msg: UserMessage{
			Message: "Quantity is outside the allowed range",
			Action:  "Quantities must be between 1 and 1000",
			Code:    "DB003",
		},
	},

	// Database connection errors (DB004-DB006)
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},

	// File errors (FILE001-FILE003)
	{
		pattern: "failed to read csv",
		msg: UserMessage{
			Message: "The CSV file could not be read",
			Action:  "Check that the file exists and is valid CSV",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file exceeds",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE003",
		},
	},

	// Session errors (SES001-SES003)
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Import session not found",
			Action:  "The session may have expired. Please start a new import",
			Code:    "SES001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "SES002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file or check your connection",
			Code:    "SES003",
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
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
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

// IsUserFacing checks if an error matches a known pattern and should be
// shown to users. Returns true if the error matches a specific pattern, not
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
