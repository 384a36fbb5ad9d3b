package core

import (
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
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "DB001",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline exceeded wins over timeout",
			err:         errors.New("context deadline exceeded (timeout)"),
			wantCode:    "ING003",
			wantMessage: "Request timed out",
		},
		{
			name:        "unsupported format",
			err:         fmt.Errorf("open books.pdf: %w", errors.New("unsupported file format")),
			wantCode:    "FILE002",
			wantMessage: "This file type is not supported",
		},
		{
			name:        "broken workbook",
			err:         errors.New("zip: not a valid zip file"),
			wantCode:    "FILE003",
			wantMessage: "The file is not a valid Excel workbook",
		},
		{
			name:        "busy",
			err:         errors.New("too many ingestions in progress"),
			wantCode:    "ING001",
			wantMessage: "System is busy processing other spreadsheets",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("HTTP: REQUEST BODY TOO LARGE"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() Code = %v, want %v", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() Message = %v, want %v", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(errors.New("no sheets in workbook"))
	want := "The workbook has no worksheets (Code: FILE005). Put the book metadata on the first worksheet"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(errors.New("empty file")) {
		t.Error("IsUserFacing(empty file) = false")
	}
	if IsUserFacing(errors.New("kaboom")) {
		t.Error("IsUserFacing(kaboom) = true")
	}
}

func TestIssueGuidanceCoversEveryCode(t *testing.T) {
	codes := []string{
		CodeHeadersIncorrect, CodeISBNInvalid, CodeTitleInvalid, CodeContributorInvalid,
		CodeContributorMissing, CodePublishDateInvalid, CodeLanguageInvalid, CodeExVATPriceInvalid,
		CodeIncVATPriceInvalid, CodeCurrencyInvalid, CodePageCountInvalid, CodePublisherInvalid,
		CodeMainBISACInvalid, CodeAdditionalBISACInvalid, CodeDescriptionInvalid, CodeTerritoriesInvalid,
	}
	seen := make(map[string]string)
	for _, code := range codes {
		msg := IssueGuidance(code)
		if msg.Code == defaultMessage.Code {
			t.Errorf("IssueGuidance(%q) fell back to default", code)
		}
		if other, dup := seen[msg.Code]; dup {
			t.Errorf("%s and %s share support code %s", code, other, msg.Code)
		}
		seen[msg.Code] = code
	}
	if got := IssueGuidance("nope"); got.Code != "ERR000" {
		t.Errorf("IssueGuidance(unknown) Code = %q, want ERR000", got.Code)
	}
	if _, ok := LookupIssueGuidance("nope"); ok {
		t.Error("LookupIssueGuidance(unknown) ok = true")
	}
	if msg, ok := LookupIssueGuidance(CodeISBNInvalid); !ok || msg.Code != "ROW001" {
		t.Errorf("LookupIssueGuidance(isbn) = %+v, %v", msg, ok)
	}
}
