package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"pharmintake/internal/model"
	"pharmintake/internal/repository"
	"pharmintake/internal/storage"
)

// Sink is the remote storage endpoint. Deliver is called exactly once per submission.
type Sink interface {
	Deliver(ctx context.Context, p *model.Payload) error
}

// objectSink stores each payload as one JSON object in an S3-compatible bucket.
type objectSink struct {
	store  storage.Storage
	prefix string
}

// NewObjectSink returns a Sink that writes payloads under prefix/<serial>.json.
func NewObjectSink(store storage.Storage, prefix string) Sink {
	if prefix == "" {
		prefix = "submissions"
	}
	return &objectSink{store: store, prefix: prefix}
}

func (s *objectSink) Deliver(ctx context.Context, p *model.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	key := path.Join(s.prefix, p.SerialNumber+".json")
	_, err = s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"serial-number": p.SerialNumber,
			"branch":        p.Branch,
		},
	})
	if err != nil {
		return fmt.Errorf("upload to storage: %w", err)
	}
	return nil
}

// recordSink inserts each payload as one row through a SubmissionRepository.
type recordSink struct {
	repo repository.SubmissionRepository
	now  func() time.Time
}

// NewRecordSink returns a Sink backed by repo.
func NewRecordSink(repo repository.SubmissionRepository) Sink {
	return &recordSink{repo: repo, now: time.Now}
}

func (s *recordSink) Deliver(ctx context.Context, p *model.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	rec := &model.SubmissionRecord{
		ID:               uuid.NewString(),
		SerialNumber:     p.SerialNumber,
		FullName:         p.FullName,
		Phone:            p.Phone,
		Branch:           p.Branch,
		InsuranceCompany: p.InsuranceCompany,
		Body:             body,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("db save failed: %w", err)
	}
	return nil
}
