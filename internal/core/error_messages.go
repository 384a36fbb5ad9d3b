package core

// # Error Codes Reference
//
// Support codes fall into two families.
//
// Technical errors (MapError) are matched case-insensitively by substring,
// first match wins:
//
//	DB001   Connection refused        "connection refused"
//	DB002   Connection reset          "connection reset"
//	DB003   Timeout                   "timeout"
//	DB004   Record not found          "record not found"
//	FILE001 File too large            "file too large", "request body too large"
//	FILE002 Unsupported format        "unsupported file format"
//	FILE003 Not a workbook            "not a valid zip file"
//	FILE004 Invalid CSV               "invalid csv", "parse error"
//	FILE005 No sheets                 "no sheets"
//	FILE006 No file                   "no file provided"
//	FILE007 Empty file                "empty file"
//	ING001  System busy               "too many ingestions"
//	ING002  Cancelled                 "context canceled"
//	ING003  Deadline exceeded         "context deadline exceeded"
//	ERR000  Anything else
//
// Row issues (IssueGuidance) map each issue code to ROWxxx, with
// HDR001 for a rejected header row.

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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific patterns before general ones.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller spreadsheet or try again later",
		Code:    "ING003",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller spreadsheet or try again later",
		Code:    "DB003",
	}},
	{"record not found", UserMessage{
		Message: "The requested record does not exist",
		Action:  "Check the ISBN or ingestion id",
		Code:    "DB004",
	}},
	{"file too large", UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the spreadsheet into smaller files",
		Code:    "FILE001",
	}},
	{"request body too large", UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the spreadsheet into smaller files",
		Code:    "FILE001",
	}},
	{"unsupported file format", UserMessage{
		Message: "This file type is not supported",
		Action:  "Upload an .xlsx or .csv file",
		Code:    "FILE002",
	}},
	{"not a valid zip file", UserMessage{
		Message: "The file is not a valid Excel workbook",
		Action:  "Re-save the file as .xlsx and upload it again",
		Code:    "FILE003",
	}},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with consistent columns",
		Code:    "FILE004",
	}},
	{"parse error", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Check for unbalanced quotes in the file",
		Code:    "FILE004",
	}},
	{"no sheets", UserMessage{
		Message: "The workbook has no worksheets",
		Action:  "Put the book metadata on the first worksheet",
		Code:    "FILE005",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a spreadsheet to upload",
		Code:    "FILE006",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a spreadsheet with a header row and data rows",
		Code:    "FILE007",
	}},
	{"too many ingestions", UserMessage{
		Message: "System is busy processing other spreadsheets",
		Action:  "Please wait a moment and try again",
		Code:    "ING001",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "ING002",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
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

var issueGuidance = map[string]UserMessage{
	CodeHeadersIncorrect: {"The header row does not match the template", "Download the template and copy its header row", "HDR001"},
	CodeISBNInvalid:      {"The eISBN is not valid", "Use the 13 digit eISBN without dashes", "ROW001"},
	CodeTitleInvalid:     {"The title is missing", "Enter the book title", "ROW002"},
	CodeContributorInvalid: {"A contributor is incomplete or invalid",
		"Give every contributor a name and one of the listed roles", "ROW003"},
	CodeContributorMissing: {"Contributors are not filled in order",
		"Move contributors left so Contributor 1 is filled first", "ROW004"},
	CodePublishDateInvalid:     {"The publication date is not valid", "Use YYYY-MM-DD, YYYYMMDD or DD/MM/YYYY", "ROW005"},
	CodeLanguageInvalid:        {"The language is not valid", "Use a three letter language code such as eng", "ROW006"},
	CodeExVATPriceInvalid:      {"The price excluding VAT is not valid", "Enter a number such as 9.99", "ROW007"},
	CodeIncVATPriceInvalid:     {"The price including VAT is not valid", "Enter a number such as 11.99", "ROW008"},
	CodeCurrencyInvalid:        {"The currency is not valid", "Use a three letter currency code such as GBP", "ROW009"},
	CodePageCountInvalid:       {"The page count is not valid", "Enter a whole number of pages or leave it blank", "ROW010"},
	CodePublisherInvalid:       {"The publisher is missing", "Enter the publisher name", "ROW011"},
	CodeMainBISACInvalid:       {"The main BISAC subject is not valid", "Use a BISAC code such as FIC005000", "ROW012"},
	CodeAdditionalBISACInvalid: {"An additional BISAC subject is not valid", "Separate BISAC codes with commas", "ROW013"},
	CodeDescriptionInvalid:     {"The description is missing", "Enter a description of the book", "ROW014"},
	CodeTerritoriesInvalid:     {"The territories are not valid", "Use two letter country codes or WORLD", "ROW015"},
}

// IssueGuidance returns the user-facing guidance for an issue code.
func IssueGuidance(code string) UserMessage {
	if msg, ok := LookupIssueGuidance(code); ok {
		return msg
	}
	return defaultMessage
}

// LookupIssueGuidance reports the guidance for code and whether it is a
// known issue code.
func LookupIssueGuidance(code string) (UserMessage, bool) {
	msg, ok := issueGuidance[code]
	return msg, ok
}
