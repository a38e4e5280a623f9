package interfaces

import "quote-board/src/models"

// -----------------------------------------------------------------------------
// IDataExchange is how the engine hands refreshed views to the presentation
// layer without depending on it.
// -----------------------------------------------------------------------------

type IDataExchange interface {
	Broadcast(update *models.MBoardUpdate)
}
