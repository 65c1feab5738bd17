// Package repository contains data access abstractions. Implementations live in
// subpackages (e.g. postgres).
package repository

import (
	"context"

	"pharmintake/internal/model"
)

// SubmissionRepository persists delivered intake payloads. No business logic here.
type SubmissionRepository interface {
	// Create inserts one submission record.
	Create(ctx context.Context, rec *model.SubmissionRecord) error
}
