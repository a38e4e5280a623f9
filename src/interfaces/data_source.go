package interfaces

import (
	"context"

	"quote-board/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource interface for fetching instrument data from external sources.
//
// Adapters own their transport concerns (headers, transport-level retries)
// and never panic past this boundary. Structural absence (market not yet
// open, no data for symbol) surfaces as nil/absent record fields, not as an
// error; errors are reserved for transport failures (helpers.FetchError) and
// unsupported operations.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchQuote retrieves the current raw snapshot for one instrument.
	FetchQuote(ctx context.Context, symbol string) (*models.MRawQuote, error)

	// -----------------------------------------------------------------------------

	// FetchIntradayBars retrieves today's minute-level bars, timestamp ascending.
	FetchIntradayBars(ctx context.Context, symbol string) (models.MBarSeries, error)

	// -----------------------------------------------------------------------------

	// FetchDailyBars retrieves up to lookback daily bars, timestamp ascending.
	FetchDailyBars(ctx context.Context, symbol string, lookback int) (models.MBarSeries, error)
}
