// Package swaperrors defines the error taxonomy shared by every component
// of the swap core. Components return sentinel errors wrapped with Kind so
// callers can branch with errors.Is/errors.As instead of string matching.
package swaperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the outcomes the protocol document
// enumerates. It drives FSM recovery policy: anything that could cost funds
// is never retried silently.
type Kind int

const (
	// KindUnknown is the zero value and should never be returned deliberately.
	KindUnknown Kind = iota
	// KindProtocolViolation marks a counterparty message that failed a
	// cryptographic or structural check. Terminal for the trade.
	KindProtocolViolation
	// KindInvalidDleq specializes KindProtocolViolation for a bad DLEQ proof.
	KindInvalidDleq
	// KindInvalidAdaptor specializes KindProtocolViolation for a bad VES
	// pre-signature or decryption.
	KindInvalidAdaptor
	// KindOracleUnavailable marks a transient chain-oracle failure.
	KindOracleUnavailable
	// KindChainReorg marks a reorg deep enough to require FSM regression.
	KindChainReorg
	// KindJournalCorruption marks a broken journal hash chain. Fatal for
	// that trade; it is quarantined, never auto-recovered.
	KindJournalCorruption
	// KindCancelled marks a user-initiated cancellation.
	KindCancelled
	// KindTimeout marks an expired handshake-freshness or oracle-health
	// timer, or a t1 deadline too near to proceed.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindProtocolViolation:
		return "ProtocolViolation"
	case KindInvalidDleq:
		return "InvalidDleq"
	case KindInvalidAdaptor:
		return "InvalidAdaptor"
	case KindOracleUnavailable:
		return "OracleUnavailable"
	case KindChainReorg:
		return "ChainReorg"
	case KindJournalCorruption:
		return "JournalCorruption"
	case KindCancelled:
		return "Cancelled"
	case KindTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// SwapError wraps an underlying error with the taxonomy Kind.
type SwapError struct {
	Kind Kind
	Err  error
}

func (e *SwapError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *SwapError) Unwrap() error {
	return e.Err
}

// New wraps err (which may be nil) as a SwapError of the given kind.
func New(k Kind, err error) *SwapError {
	return &SwapError{Kind: k, Err: err}
}

// Newf builds a SwapError of the given kind from a format string.
func Newf(k Kind, format string, args ...interface{}) *SwapError {
	return &SwapError{Kind: k, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	var se *SwapError
	if errors.As(err, &se) {
		return se.Kind == k
	}
	return false
}

// ProtocolViolation constructs a KindProtocolViolation error.
func ProtocolViolation(format string, args ...interface{}) *SwapError {
	return Newf(KindProtocolViolation, format, args...)
}

// InvalidDleq constructs a KindInvalidDleq error (a specialization of
// ProtocolViolation per the error taxonomy).
func InvalidDleq(format string, args ...interface{}) *SwapError {
	return Newf(KindInvalidDleq, format, args...)
}

// InvalidAdaptor constructs a KindInvalidAdaptor error.
func InvalidAdaptor(format string, args ...interface{}) *SwapError {
	return Newf(KindInvalidAdaptor, format, args...)
}

// OracleUnavailable constructs a KindOracleUnavailable error.
func OracleUnavailable(format string, args ...interface{}) *SwapError {
	return Newf(KindOracleUnavailable, format, args...)
}

// JournalCorruption constructs a KindJournalCorruption error.
func JournalCorruption(format string, args ...interface{}) *SwapError {
	return Newf(KindJournalCorruption, format, args...)
}
