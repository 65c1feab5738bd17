package service

import "fmt"

// Validation error codes.
const (
	CodeIncomplete       = "INCOMPLETE_DATA"
	CodeInvalidPhone     = "INVALID_PHONE"
	CodeInvalidSelection = "INVALID_SELECTION"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeUnsupportedType  = "UNSUPPORTED_FILE_TYPE"
)

// ValidationError is a user-correctable input problem. Message is the headline shown
// inline on the form, Detail the optional explanation beneath it.
type ValidationError struct {
	Code    string
	Message string
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

// Is matches any *ValidationError with the same code, so callers can test against
// the exported sentinels with errors.Is.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrIncomplete = &ValidationError{
		Code:    CodeIncomplete,
		Message: "incomplete data",
		Detail:  "full name, phone, branch, insurance company, prescription, insurance card and both sides of the ID are required",
	}
	ErrInvalidPhone = &ValidationError{
		Code:    CodeInvalidPhone,
		Message: "invalid phone number",
		Detail:  "the phone number must be 11 digits starting with 010, 011, 012 or 015",
	}
	ErrInvalidSelection = &ValidationError{
		Code:    CodeInvalidSelection,
		Message: "invalid selection",
		Detail:  "choose a branch and an insurance company from the list",
	}
	ErrFileTooLarge = &ValidationError{
		Code:    CodeFileTooLarge,
		Message: "file too large",
	}
	ErrUnsupportedType = &ValidationError{
		Code:    CodeUnsupportedType,
		Message: "unsupported file type",
		Detail:  "upload JPG or PNG images or PDF files only",
	}
)

func fileTooLarge(name string) *ValidationError {
	return &ValidationError{
		Code:    CodeFileTooLarge,
		Message: ErrFileTooLarge.Message,
		Detail:  fmt.Sprintf("the file %q exceeds 5 MB; compress the image or choose another file", name),
	}
}
