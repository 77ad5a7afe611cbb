package types

import (
	"errors"

	"github.com/ipfs-force-community/cosmos-gateway/codec"
)

// UnknownErrorMessage is used when a failing party gives no message at all.
const UnknownErrorMessage = "Unknown Error"

var (
	ErrNotInstalled         = errors.New("wallet not installed")
	ErrUnsupportedChain     = errors.New("unsupported chain id")
	ErrAccountRequired      = errors.New("account required")
	ErrLedgerUnsupported    = errors.New("ledger account does not support direct signing")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUserRejected         = errors.New("request rejected by user")
	ErrInvalidEncoding      = codec.ErrInvalidEncoding

	ErrEncodingService   = errors.New("encoding service error")
	ErrBroadcastRejected = errors.New("broadcast rejected")
)

// EncodingServiceError carries the message returned by the proto encoding
// service on a non-200 response.
type EncodingServiceError struct {
	StatusCode int
	Message    string
}

func (e *EncodingServiceError) Error() string {
	if e.Message == "" {
		return UnknownErrorMessage
	}
	return e.Message
}

func (e *EncodingServiceError) Is(target error) bool {
	return target == ErrEncodingService
}

// BroadcastRejectedError carries the raw log of a transaction the network
// refused with a non-zero code.
type BroadcastRejectedError struct {
	Code int64
	Log  string
}

func (e *BroadcastRejectedError) Error() string {
	if e.Log == "" {
		return UnknownErrorMessage
	}
	return e.Log
}

func (e *BroadcastRejectedError) Is(target error) bool {
	return target == ErrBroadcastRejected
}

// error kinds used when an error crosses a process boundary
const (
	KindUnknown           = ""
	KindNotInstalled      = "NotInstalled"
	KindUnsupportedChain  = "UnsupportedChain"
	KindAccountRequired   = "AccountRequired"
	KindLedgerUnsupported = "LedgerUnsupported"
	KindUnsupportedOp     = "UnsupportedOperation"
	KindUserRejected      = "UserRejected"
	KindInvalidEncoding   = "InvalidEncoding"
	KindEncodingService   = "EncodingServiceError"
	KindBroadcastRejected = "BroadcastRejected"
)

var kindSentinels = []struct {
	kind string
	err  error
}{
	{KindNotInstalled, ErrNotInstalled},
	{KindUnsupportedChain, ErrUnsupportedChain},
	{KindAccountRequired, ErrAccountRequired},
	{KindLedgerUnsupported, ErrLedgerUnsupported},
	{KindUnsupportedOp, ErrUnsupportedOperation},
	{KindUserRejected, ErrUserRejected},
	{KindInvalidEncoding, ErrInvalidEncoding},
	{KindEncodingService, ErrEncodingService},
	{KindBroadcastRejected, ErrBroadcastRejected},
}

// ErrorKind returns the taxonomy name of err, or KindUnknown.
func ErrorKind(err error) string {
	if err == nil {
		return KindUnknown
	}
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return ks.kind
		}
	}
	return KindUnknown
}

type kindError struct {
	sentinel error
	msg      string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.sentinel }

// ErrorFromKind rebuilds an error received from a remote party. The message is
// kept verbatim and errors.Is matches the sentinel of kind.
func ErrorFromKind(kind, msg string) error {
	if msg == "" {
		msg = UnknownErrorMessage
	}
	switch kind {
	case KindEncodingService:
		return &EncodingServiceError{Message: msg}
	case KindBroadcastRejected:
		return &BroadcastRejectedError{Log: msg}
	}
	for _, ks := range kindSentinels {
		if ks.kind == kind {
			return &kindError{sentinel: ks.err, msg: msg}
		}
	}
	return errors.New(msg)
}
