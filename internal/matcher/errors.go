package matcher

import "fmt"

// Kind names a response-contract or application failure.
type Kind string

const (
	// UnexpectedResponseFormat means the response did not declare itself as JSON,
	// typically an HTML error page from a proxy.
	UnexpectedResponseFormat Kind = "UnexpectedResponseFormat"
	// MalformedResponse means the declared JSON body could not be parsed or did
	// not have the expected shape.
	MalformedResponse Kind = "MalformedResponse"

	ExtractionFailed  Kind = "ExtractionFailed"
	NoExtractableText Kind = "NoExtractableText"
	AnalysisFailed    Kind = "AnalysisFailed"
	HistoryFailed     Kind = "HistoryFailed"
)

var defaultMessages = map[Kind]string{
	UnexpectedResponseFormat: "Server error: Expected JSON response but got HTML. Please try again or contact support if the issue persists.",
	MalformedResponse:        "Failed to process server response. Please try again or contact support.",
	ExtractionFailed:         "PDF extraction failed",
	NoExtractableText:        "No text could be extracted from the PDF. Please ensure the PDF contains selectable text and is not a scanned image.",
	AnalysisFailed:           "Analysis failed",
	HistoryFailed:            "Failed to load analyses",
}

var (
	ErrUnexpectedResponseFormat = &ContractError{Kind: UnexpectedResponseFormat}
	ErrMalformedResponse        = &ContractError{Kind: MalformedResponse}

	ErrExtractionFailed  = &ApplicationError{Kind: ExtractionFailed}
	ErrNoExtractableText = &ApplicationError{Kind: NoExtractableText}
	ErrAnalysisFailed    = &ApplicationError{Kind: AnalysisFailed}
	ErrHistoryFailed     = &ApplicationError{Kind: HistoryFailed}
)

// ContractError is an infrastructure-level failure: the backend answered with
// something that is not a well-formed JSON document.
type ContractError struct {
	Kind     Kind
	Endpoint string
	Status   int
	Err      error
}

func (e *ContractError) Error() string {
	return defaultMessages[e.Kind]
}

func (e *ContractError) Unwrap() error { return e.Err }

func (e *ContractError) Is(target error) bool {
	t, ok := target.(*ContractError)
	return ok && t.Kind == e.Kind
}

// Detail describes the failure for logs, including the underlying cause.
func (e *ContractError) Detail() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s (status %d)", e.Kind, e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s %s (status %d): %v", e.Kind, e.Endpoint, e.Status, e.Err)
}

// ApplicationError is a well-formed failure reported by the backend, or a
// successful response whose content is unusable.
type ApplicationError struct {
	Kind     Kind
	Endpoint string
	Status   int
	// Message is the server-supplied error text, if any.
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return defaultMessages[e.Kind]
}

func (e *ApplicationError) Is(target error) bool {
	t, ok := target.(*ApplicationError)
	return ok && t.Kind == e.Kind
}
