package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pharmintake/internal/logger"
	"pharmintake/internal/model"
)

const (
	// NoPrescriptionText is returned without any remote call when no prescription is attached.
	NoPrescriptionText = "no prescription provided"
	// ClassificationFallbackText replaces the summary whenever the remote analysis fails.
	ClassificationFallbackText = "automatic analysis failed"
)

// ErrEmptyCompletion is recorded when the completion service answers without usable text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// Completer sends a prompt plus one inline file to a multimodal model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string, file *model.EncodedAttachment) (string, error)
}

// Classification is the outcome of a prescription analysis. Text is always set; Err records
// why the fallback was used and is meant for diagnostics only.
type Classification struct {
	Text     string
	Fallback bool
	Err      error
}

// PrescriptionClassifier produces a best-effort summary of a prescription image or PDF.
type PrescriptionClassifier interface {
	Classify(ctx context.Context, prescription *model.EncodedAttachment) Classification
}

type prescriptionClassifier struct {
	completer Completer
	prompt    string
}

// NewPrescriptionClassifier builds a classifier that asks for the summary in language.
func NewPrescriptionClassifier(c Completer, language string) PrescriptionClassifier {
	return &prescriptionClassifier{completer: c, prompt: BuildPrompt(language)}
}

// BuildPrompt returns the fixed instruction sent alongside the prescription.
func BuildPrompt(language string) string {
	if strings.TrimSpace(language) == "" {
		language = "Arabic"
	}
	return fmt.Sprintf(`You are a professional pharmacy assistant. Analyze the attached medical prescription and extract the following precisely, answering in %s:
1. The names of the prescribed medicines.
2. The dosage and directions for each medicine.
3. The prescriber's name and specialty, if present.
Format the answer as short, clear bullet points.`, language)
}

func (c *prescriptionClassifier) Classify(ctx context.Context, rx *model.EncodedAttachment) Classification {
	if rx == nil {
		return Classification{Text: NoPrescriptionText}
	}

	text, err := c.completer.Complete(ctx, c.prompt, rx)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		logger.FromContext(ctx).Warn("prescription analysis failed",
			"file", rx.Name,
			"error", err,
		)
		return Classification{Text: ClassificationFallbackText, Fallback: true, Err: err}
	}
	return Classification{Text: text}
}
