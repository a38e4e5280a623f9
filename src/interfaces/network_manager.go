package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager performs HTTP requests with the configured transport policy
// (timeout, headers, proxy, TLS). Every call is bounded by the client timeout
// and by ctx.
// -----------------------------------------------------------------------------

type INetworkManager interface {
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
