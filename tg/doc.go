// Package tg holds the wire-level types shared by every component that
// talks to the bot platform: the response envelope, operation names,
// parse modes, error types and the redacting token wrapper.
//
// Nothing in this package performs I/O. The gateway package owns the
// HTTP calls; broadcast and schedule only ever see these types.
package tg
