package validation

import (
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is the largest upload accepted by a channel (10 MiB).
	MaxFileSize int64 = 10 * 1024 * 1024

	PDFMediaType = "application/pdf"
)

// Kind names a locally detected violation.
type Kind string

const (
	FileTooLarge Kind = "FileTooLarge"
	EmptyFile    Kind = "EmptyFile"
	EmptyField   Kind = "EmptyField"
)

// Error is a violation detected without any network involvement.
// Two errors are equal for errors.Is when their kinds match.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrFileTooLarge = &Error{Kind: FileTooLarge, Message: "File size must be less than 10MB"}
	ErrEmptyFile    = &Error{Kind: EmptyFile, Message: "The file appears to be empty"}
	ErrEmptyField   = &Error{Kind: EmptyField, Message: "This field is required"}
)

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// AcceptableSize reports whether an upload of byteLength bytes is allowed.
func AcceptableSize(byteLength int64) bool {
	return byteLength <= MaxFileSize
}

// IsPDF reports whether a file should be sent for remote extraction.
func IsPDF(name, declaredType string) bool {
	if declaredType == PDFMediaType {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// NonEmpty reports whether text has content after trimming.
func NonEmpty(text string) bool {
	return strings.TrimSpace(text) != ""
}
