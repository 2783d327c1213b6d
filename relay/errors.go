package relay

import "errors"

// Sentinel errors
var (
	ErrNoCredentials  = errors.New("promocast/relay: no credentials configured")
	ErrBearerRequired = errors.New("promocast/relay: bearer token required")
)
