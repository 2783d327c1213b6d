// Package gateway performs the outbound platform calls for the promotion
// dispatcher.
//
// Two implementations of the Caller interface exist:
//
//   - BotGateway talks to the bot platform directly and therefore holds
//     the long-lived bot credential. It applies a global rate limit and a
//     circuit breaker, and scrubs the credential from transport errors.
//   - RelayGateway forwards operations through a trusted relay endpoint
//     so the dispatching client never sees the bot credential; it
//     authorizes with a static bearer token and names the credential the
//     relay should use.
//
// Both return the platform envelope on success and *tg.APIError when the
// platform reports an application-level failure, so callers inspect
// errors identically regardless of the transport path.
package gateway
