package interfaces

import "quote-board/src/models"

// -----------------------------------------------------------------------------
// IRecorder persists reconciled snapshots for later inspection. Persistence is
// best effort: a recorder failure never fails a refresh cycle.
// -----------------------------------------------------------------------------

type IRecorder interface {
	Initialize() error
	RecordSnapshot(snap *models.MSnapshot, metrics *models.MDerivedMetrics) error
	Close() error
}
