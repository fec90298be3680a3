package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/vision-probe/internal/domain"
	"github.com/samvad-hq/vision-probe/internal/storage"
	"github.com/samvad-hq/vision-probe/pkg/publishers"
)

type historySink struct {
	store storage.Store
}

func (h historySink) Accept(_ context.Context, evt domain.RunEvent) error {
	if err := h.store.Record(evt); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

type publishSink struct {
	fanout *publishers.Fanout
	source string
}

func (p publishSink) Accept(ctx context.Context, evt domain.RunEvent) error {
	_, err := p.fanout.Publish(ctx, publishers.NewEvent(p.source, evt))
	return err
}
