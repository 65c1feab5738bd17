package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pharmintake/internal/model"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Deliver(ctx context.Context, p *model.Payload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
