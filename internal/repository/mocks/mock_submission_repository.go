package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pharmintake/internal/model"
)

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, rec *model.SubmissionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
