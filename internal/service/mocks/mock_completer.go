package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pharmintake/internal/model"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string, file *model.EncodedAttachment) (string, error) {
	args := m.Called(ctx, prompt, file)
	return args.String(0), args.Error(1)
}
