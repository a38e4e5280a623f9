package storage

import "quote-board/src/models"

// -----------------------------------------------------------------------------
// NoopRecorder discards snapshots. Used when persistence is disabled.
// -----------------------------------------------------------------------------

type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Initialize() error { return nil }

func (n *NoopRecorder) RecordSnapshot(_ *models.MSnapshot, _ *models.MDerivedMetrics) error {
	return nil
}

func (n *NoopRecorder) Close() error { return nil }
