// Package relay implements the trusted relay endpoint that holds the
// bot credentials on behalf of dispatching clients.
//
// Clients authenticate with a static bearer token and name a credential
// instead of carrying one; the relay resolves the name from its own
// configuration, forwards the operation to the platform, and writes the
// platform envelope back unchanged with a 200 status. Application-level
// failures (ok:false envelopes) pass through to the client for
// inspection; only relay-side problems produce non-2xx statuses.
package relay
