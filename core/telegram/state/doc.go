// Package state provides per-user conversation sessions for Telegram bots.
// A session is a named step plus a small string key/value payload; it lives in a
// Store that is either process memory or Redis. The package is domain-agnostic.
package state
