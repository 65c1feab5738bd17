package model

import "time"

// SubmissionRecord is a delivered payload as kept by the postgres sink.
// Body holds the payload exactly as it would have been sent over the wire.
type SubmissionRecord struct {
	ID               string    `json:"id"`
	SerialNumber     string    `json:"serial_number"`
	FullName         string    `json:"full_name"`
	Phone            string    `json:"phone"`
	Branch           string    `json:"branch"`
	InsuranceCompany string    `json:"insurance_company"`
	Body             []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}
