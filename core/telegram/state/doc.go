// Package state provides a session-keyed FSM manager for multi-step bot
// conversations. A session is created explicitly on conversation entry and
// torn down explicitly on commit or cancellation; there is no timeout-based
// expiry.
package state
