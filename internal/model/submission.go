package model

import (
	"bytes"
	"io"
)

// Attachment is one user-supplied file. Open is called each time the content is needed;
// it may fail (e.g. an expired upload handle).
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// NewBytesAttachment wraps an in-memory file.
func NewBytesAttachment(name, contentType string, data []byte) *Attachment {
	return &Attachment{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// SubmissionRequest is the customer's intake form as handed to the pipeline.
type SubmissionRequest struct {
	FullName         string
	Phone            string
	Address          string
	LocationURL      string
	Branch           string
	InsuranceCompany string

	PrescriptionFile *Attachment
	CardFile         *Attachment
	IDFrontFile      *Attachment
	IDBackFile       *Attachment
}

// Attachments returns the four attachment slots in a fixed order:
// prescription, card, ID front, ID back.
func (r *SubmissionRequest) Attachments() [4]*Attachment {
	return [4]*Attachment{r.PrescriptionFile, r.CardFile, r.IDFrontFile, r.IDBackFile}
}

// EncodedAttachment is the transport form of an Attachment.
type EncodedAttachment struct {
	Base64 string `json:"base64"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

// Payload is the document delivered to the remote storage endpoint.
type Payload struct {
	SerialNumber     string             `json:"serialNumber"`
	FullName         string             `json:"fullName"`
	Phone            string             `json:"phone"`
	Address          string             `json:"address"`
	LocationURL      string             `json:"locationUrl"`
	Branch           string             `json:"branch"`
	InsuranceCompany string             `json:"insuranceCompany"`
	ExtractedAIData  string             `json:"extractedAiData"`
	Prescription     *EncodedAttachment `json:"prescription"`
	Card             *EncodedAttachment `json:"card"`
	IDFront          *EncodedAttachment `json:"idFront"`
	IDBack           *EncodedAttachment `json:"idBack"`
}

// FailureKind classifies why a submission did not succeed.
type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureValidation   FailureKind = "validation"
	FailureEncoding     FailureKind = "encoding"
	FailureTransmission FailureKind = "transmission"
)

// SubmissionResult is the outcome of one pipeline run.
type SubmissionResult struct {
	Success      bool        `json:"success"`
	SerialNumber string      `json:"serialNumber,omitempty"`
	Error        string      `json:"error,omitempty"`
	Detail       string      `json:"detail,omitempty"`
	Kind         FailureKind `json:"-"`
}
