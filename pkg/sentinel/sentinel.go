package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients, stores and the
// orchestration layers return these (optionally wrapped) so callers can
// classify failures with errors.Is without parsing messages.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity or cached page does not exist
// - ErrRateLimited: upstream rejected the request for exceeding its quota
// - ErrUnavailable: upstream or resource temporarily unavailable
// - ErrClosed: component has been torn down; no further requests accepted
var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
