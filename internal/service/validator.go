package service

import (
	"regexp"
	"slices"
	"strings"

	"pharmintake/internal/model"
)

// MaxFileSize is the largest attachment accepted, in bytes (5 MiB).
const MaxFileSize int64 = 5 * 1024 * 1024

// AllowedContentTypes are the media types accepted for attachments.
var AllowedContentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// Egyptian mobile numbers: 010, 011, 012 or 015 followed by eight digits.
var phonePattern = regexp.MustCompile(`^01[0125][0-9]{8}$`)

// ValidPhone reports whether phone is an acceptable mobile number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateRequest checks a request before submission and returns the first violated rule
// as a *ValidationError, or nil. It performs no I/O and never mutates req.
func ValidateRequest(req *model.SubmissionRequest) error {
	if req == nil {
		return ErrIncomplete
	}
	if blank(req.FullName) || blank(req.Phone) || blank(req.Branch) || blank(req.InsuranceCompany) {
		return ErrIncomplete
	}
	for _, a := range req.Attachments() {
		if a == nil {
			return ErrIncomplete
		}
	}

	if !ValidPhone(req.Phone) {
		return ErrInvalidPhone
	}

	if !model.IsBranch(req.Branch) || !model.IsInsuranceCompany(req.InsuranceCompany) {
		return ErrInvalidSelection
	}
	return nil
}

// ValidateAttachment applies the attach-time rules to a single file: size first, then type.
func ValidateAttachment(a *model.Attachment) error {
	if a == nil {
		return ErrIncomplete
	}
	if a.Size > MaxFileSize {
		return fileTooLarge(a.Name)
	}
	if !slices.Contains(AllowedContentTypes, mediaType(a.ContentType)) {
		return ErrUnsupportedType
	}
	return nil
}

// mediaType strips parameters such as "; charset=binary" from a Content-Type value.
func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
