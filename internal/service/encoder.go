package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"pharmintake/internal/model"
)

// ErrNoOpener is returned for an attachment that has no content source.
var ErrNoOpener = errors.New("attachment has no content")

// EncodeAttachment reads a and returns its base64 text together with its media type and name.
// A nil attachment encodes to nil.
func EncodeAttachment(ctx context.Context, a *model.Attachment) (*model.EncodedAttachment, error) {
	if a == nil {
		return nil, nil
	}
	if a.Open == nil {
		return nil, fmt.Errorf("encode %q: %w", a.Name, ErrNoOpener)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := a.Open()
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", a.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", a.Name, err)
	}

	return &model.EncodedAttachment{
		Base64: base64.StdEncoding.EncodeToString(raw),
		Type:   a.ContentType,
		Name:   a.Name,
	}, nil
}

// encodeAll encodes the four attachment slots concurrently and waits for all of them.
// The first failure fails the whole batch.
func encodeAll(ctx context.Context, atts [4]*model.Attachment) ([4]*model.EncodedAttachment, error) {
	var out [4]*model.EncodedAttachment
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range atts {
		g.Go(func() error {
			enc, err := EncodeAttachment(gctx, a)
			if err != nil {
				return err
			}
			out[i] = enc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [4]*model.EncodedAttachment{}, err
	}
	return out, nil
}
