package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pharmintake/internal/logger"
	"pharmintake/internal/model"
)

// Messages reported for non-validation failures.
const (
	MsgSubmissionFailed = "submission failed"
	MsgConnectionError  = "server connection error"
)

// Stage is a step of one pipeline run.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageEncoding
	StageClassifying
	StageAssembling
	StageTransmitting
	StageSucceeded
	StageFailed
)

var stageNames = [...]string{
	StageIdle:         "idle",
	StageValidating:   "validating",
	StageEncoding:     "encoding",
	StageClassifying:  "classifying",
	StageAssembling:   "assembling",
	StageTransmitting: "transmitting",
	StageSucceeded:    "succeeded",
	StageFailed:       "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// SubmissionService runs the intake pipeline.
type SubmissionService interface {
	// Submit validates req, encodes its attachments, annotates the prescription and delivers
	// the assembled payload once. Every call starts from Idle; nothing is retried.
	Submit(ctx context.Context, req *model.SubmissionRequest) model.SubmissionResult
}

// Option customizes a SubmissionService.
type Option func(*submissionService)

// WithSerial replaces the serial number generator.
func WithSerial(f SerialFunc) Option {
	return func(s *submissionService) { s.serial = f }
}

// WithMetrics records pipeline outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(s *submissionService) { s.metrics = m }
}

// WithStageHook calls fn on every stage transition of every run.
func WithStageHook(fn func(Stage)) Option {
	return func(s *submissionService) { s.hook = fn }
}

// WithTracer replaces the tracer used for pipeline spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *submissionService) { s.tracer = t }
}

type submissionService struct {
	classifier PrescriptionClassifier
	sink       Sink
	serial     SerialFunc
	metrics    *Metrics
	hook       func(Stage)
	tracer     trace.Tracer
}

// NewSubmissionService constructs the pipeline around a classifier and a delivery sink.
func NewSubmissionService(classifier PrescriptionClassifier, sink Sink, opts ...Option) SubmissionService {
	s := &submissionService{
		classifier: classifier,
		sink:       sink,
		serial:     NewSerial,
		tracer:     otel.Tracer("pharmintake/internal/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *submissionService) Submit(ctx context.Context, req *model.SubmissionRequest) model.SubmissionResult {
	ctx, span := s.tracer.Start(ctx, "intake.submit")
	defer span.End()
	log := logger.FromContext(ctx)

	s.enter(span, StageIdle)
	s.enter(span, StageValidating)
	if err := ValidateRequest(req); err != nil {
		log.Info("submission rejected", "error", err)
		return s.fail(span, model.FailureValidation, err)
	}

	s.enter(span, StageEncoding)
	encoded, err := s.encode(ctx, req)
	if err != nil {
		log.Error("attachment encoding failed", "error", err)
		return s.fail(span, model.FailureEncoding, err)
	}

	s.enter(span, StageClassifying)
	cls := s.classify(ctx, encoded[0])
	s.metrics.observeClassification(cls)

	s.enter(span, StageAssembling)
	payload := &model.Payload{
		SerialNumber:     s.serial(),
		FullName:         req.FullName,
		Phone:            req.Phone,
		Address:          req.Address,
		LocationURL:      req.LocationURL,
		Branch:           req.Branch,
		InsuranceCompany: req.InsuranceCompany,
		ExtractedAIData:  cls.Text,
		Prescription:     encoded[0],
		Card:             encoded[1],
		IDFront:          encoded[2],
		IDBack:           encoded[3],
	}
	span.SetAttributes(attribute.String("intake.serial_number", payload.SerialNumber))

	s.enter(span, StageTransmitting)
	if err := s.transmit(ctx, payload); err != nil {
		log.Error("payload delivery failed", "serial_number", payload.SerialNumber, "error", err)
		return s.fail(span, model.FailureTransmission, err)
	}

	s.enter(span, StageSucceeded)
	s.metrics.observeSubmission("succeeded")
	log.Info("submission delivered",
		"serial_number", payload.SerialNumber,
		"branch", payload.Branch,
		"ai_fallback", cls.Fallback,
	)
	return model.SubmissionResult{Success: true, SerialNumber: payload.SerialNumber}
}

func (s *submissionService) encode(ctx context.Context, req *model.SubmissionRequest) ([4]*model.EncodedAttachment, error) {
	ctx, span := s.tracer.Start(ctx, "intake.encode")
	defer span.End()
	out, err := encodeAll(ctx, req.Attachments())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (s *submissionService) classify(ctx context.Context, rx *model.EncodedAttachment) Classification {
	ctx, span := s.tracer.Start(ctx, "intake.classify")
	defer span.End()
	c := s.classifier.Classify(ctx, rx)
	span.SetAttributes(attribute.Bool("intake.classification.fallback", c.Fallback))
	if c.Err != nil {
		span.RecordError(c.Err)
	}
	return c
}

func (s *submissionService) transmit(ctx context.Context, p *model.Payload) error {
	ctx, span := s.tracer.Start(ctx, "intake.transmit")
	defer span.End()
	err := s.sink.Deliver(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *submissionService) enter(span trace.Span, st Stage) {
	span.AddEvent("stage", trace.WithAttributes(attribute.String("intake.stage", st.String())))
	if s.hook != nil {
		s.hook(st)
	}
}

func (s *submissionService) fail(span trace.Span, kind model.FailureKind, err error) model.SubmissionResult {
	s.enter(span, StageFailed)
	span.SetStatus(codes.Error, string(kind))
	s.metrics.observeSubmission(string(kind) + "_failed")

	res := model.SubmissionResult{Kind: kind}
	switch kind {
	case model.FailureValidation:
		var ve *ValidationError
		if errors.As(err, &ve) {
			res.Error, res.Detail = ve.Message, ve.Detail
		} else {
			res.Error = err.Error()
		}
	case model.FailureEncoding:
		res.Error = MsgSubmissionFailed
	default:
		res.Error = err.Error()
		if res.Error == "" {
			res.Error = MsgConnectionError
		}
	}
	return res
}
