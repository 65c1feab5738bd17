package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pharmintake/internal/model"
	"pharmintake/internal/service/mocks"
)

func TestPrescriptionClassifier_Classify(t *testing.T) {
	ctx := context.Background()
	rx := &model.EncodedAttachment{Base64: "AAAA", Type: "image/jpeg", Name: "rx.jpg"}
	remoteErr := errors.New("503 service unavailable")

	tests := []struct {
		name         string
		file         *model.EncodedAttachment
		setupMocks   func(m *mocks.MockCompleter)
		wantText     string
		wantFallback bool
		wantErr      error
	}{
		{
			name: "summary returned",
			file: rx,
			setupMocks: func(m *mocks.MockCompleter) {
				m.On("Complete", ctx, BuildPrompt("Arabic"), rx).Return("- Panadol 500mg twice daily", nil)
			},
			wantText: "- Panadol 500mg twice daily",
		},
		{
			name:       "absent prescription skips the call",
			file:       nil,
			setupMocks: func(m *mocks.MockCompleter) {},
			wantText:   NoPrescriptionText,
		},
		{
			name: "remote failure degrades to fallback",
			file: rx,
			setupMocks: func(m *mocks.MockCompleter) {
				m.On("Complete", ctx, mock.Anything, rx).Return("", remoteErr)
			},
			wantText:     ClassificationFallbackText,
			wantFallback: true,
			wantErr:      remoteErr,
		},
		{
			name: "blank completion degrades to fallback",
			file: rx,
			setupMocks: func(m *mocks.MockCompleter) {
				m.On("Complete", ctx, mock.Anything, rx).Return("  \n", nil)
			},
			wantText:     ClassificationFallbackText,
			wantFallback: true,
			wantErr:      ErrEmptyCompletion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mocks.MockCompleter)
			tt.setupMocks(m)

			got := NewPrescriptionClassifier(m, "Arabic").Classify(ctx, tt.file)

			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantFallback, got.Fallback)
			if tt.wantErr != nil {
				assert.ErrorIs(t, got.Err, tt.wantErr)
			} else {
				assert.NoError(t, got.Err)
			}
			m.AssertExpectations(t)
			if tt.file == nil {
				m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("English")
	assert.Contains(t, p, "answering in English")
	assert.Contains(t, p, "medicines")
	assert.Contains(t, p, "dosage")
	assert.Contains(t, p, "prescriber")

	assert.Contains(t, BuildPrompt(""), "answering in Arabic")
}
