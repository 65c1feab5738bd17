package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pharmintake/internal/model"
)

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, req *model.SubmissionRequest) model.SubmissionResult {
	args := m.Called(ctx, req)
	return args.Get(0).(model.SubmissionResult)
}
