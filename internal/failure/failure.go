// Package failure classifies every error crossing a repository boundary into
// one of four kinds: database, network, server, unknown. Callers should use
// errors.As (or KindOf) to match, never string comparison.
package failure

import (
	"errors"
	"fmt"
)

// Kind discriminates failure categories.
type Kind int

const (
	// KindUnknown covers malformed responses and programming errors.
	// Not retryable.
	KindUnknown Kind = iota

	// KindDatabase means the local store raised during a read, write or
	// transaction. The store stays consistent (transactions are atomic).
	KindDatabase

	// KindNetwork means a transport-level problem: no response, timeout,
	// connection reset. Retryable.
	KindNetwork

	// KindServer means the remote call completed but the server rejected
	// it (envelope status != 1 or a non-2xx HTTP status). The message
	// carries the server-provided reason. Not automatically retryable.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "database"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Failure is the classified error type returned by repositories, the API
// client and the sync orchestrator.
type Failure struct {
	Kind    Kind
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s failure: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s failure: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Cause }

// Database wraps a local store error.
func Database(err error) *Failure {
	return &Failure{Kind: KindDatabase, Message: "local store error", Cause: err}
}

// Network wraps a transport error.
func Network(err error) *Failure {
	return &Failure{Kind: KindNetwork, Message: "transport error", Cause: err}
}

// Server builds a failure from a server-provided rejection message.
func Server(message string) *Failure {
	return &Failure{Kind: KindServer, Message: message}
}

// Unknown wraps anything that does not fit the other kinds.
func Unknown(err error) *Failure {
	return &Failure{Kind: KindUnknown, Message: "unexpected error", Cause: err}
}

// Unknownf builds an unknown failure from a format string.
func Unknownf(format string, args ...any) *Failure {
	return &Failure{Kind: KindUnknown, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from err. Errors that are not a *Failure
// report KindUnknown.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is worth retrying with the same
// parameters. Only network failures qualify.
func IsRetryable(err error) bool {
	return KindOf(err) == KindNetwork
}
