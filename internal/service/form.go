package service

import (
	"errors"
	"fmt"

	"pharmintake/internal/model"
)

// Form field names, shared with the HTTP multipart encoding of the intake form.
const (
	FieldFullName         = "fullName"
	FieldPhone            = "phone"
	FieldAddress          = "address"
	FieldLocationURL      = "locationUrl"
	FieldBranch           = "branch"
	FieldInsuranceCompany = "insuranceCompany"

	FieldPrescriptionFile = "prescriptionFile"
	FieldCardFile         = "cardFile"
	FieldIDFrontFile      = "idFrontFile"
	FieldIDBackFile       = "idBackFile"
)

// TextFields and FileFields list the form inputs in display order.
var (
	TextFields = []string{FieldFullName, FieldPhone, FieldAddress, FieldLocationURL, FieldBranch, FieldInsuranceCompany}
	FileFields = []string{FieldPrescriptionFile, FieldCardFile, FieldIDFrontFile, FieldIDBackFile}
)

// ErrUnknownField is returned for a field name the form does not have.
var ErrUnknownField = errors.New("unknown form field")

// Form is an intake request being filled in. It owns the request until Request is called
// and remembers the validation error currently shown to the customer.
type Form struct {
	req model.SubmissionRequest
	err error
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Set stores a text field. Editing a field dismisses the displayed error.
func (f *Form) Set(field, value string) error {
	switch field {
	case FieldFullName:
		f.req.FullName = value
	case FieldPhone:
		f.req.Phone = value
	case FieldAddress:
		f.req.Address = value
	case FieldLocationURL:
		f.req.LocationURL = value
	case FieldBranch:
		f.req.Branch = value
	case FieldInsuranceCompany:
		f.req.InsuranceCompany = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	f.err = nil
	return nil
}

// SetLocation stores the map link for a device position.
func (f *Form) SetLocation(lat, lon float64) error {
	link, err := MapLink(lat, lon)
	if err != nil {
		return err
	}
	return f.Set(FieldLocationURL, link)
}

// Attach validates a and, if acceptable, stores it in the named slot. A rejected file is
// not stored and every other field keeps its value.
func (f *Form) Attach(field string, a *model.Attachment) error {
	slot, err := f.slot(field)
	if err != nil {
		return err
	}
	if err := ValidateAttachment(a); err != nil {
		f.err = err
		return err
	}
	*slot = a
	f.err = nil
	return nil
}

// Validate runs the submit-time checks and updates the displayed error.
func (f *Form) Validate() error {
	f.err = ValidateRequest(&f.req)
	return f.err
}

// Err returns the validation error currently displayed, if any.
func (f *Form) Err() error {
	return f.err
}

// Request returns a copy of the request as filled in so far.
func (f *Form) Request() *model.SubmissionRequest {
	req := f.req
	return &req
}

// Reset clears every field, as after a successful submission.
func (f *Form) Reset() {
	*f = Form{}
}

func (f *Form) slot(field string) (**model.Attachment, error) {
	switch field {
	case FieldPrescriptionFile:
		return &f.req.PrescriptionFile, nil
	case FieldCardFile:
		return &f.req.CardFile, nil
	case FieldIDFrontFile:
		return &f.req.IDFrontFile, nil
	case FieldIDBackFile:
		return &f.req.IDBackFile, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
}
