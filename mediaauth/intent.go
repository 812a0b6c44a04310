package mediaauth

import (
	"context"
	"errors"
)

// MessageTag is the protocol marker every signed media message must contain.
// A signature over a message without the tag could have been produced for an
// unrelated purpose and is never accepted.
const MessageTag = "IBOM_MEDIA_SIGN"

// SignedIntent is a client's freshness-bounded assertion that it controls
// Wallet and wants access to Mint. The message is expected to look like
//
//	IBOM_MEDIA_SIGN|mint=<mint>|ts=<epoch_ms>
//
// and Signature is a detached Ed25519 signature over the raw message bytes.
type SignedIntent struct {
	// Wallet is the base58-encoded public key claiming access.
	Wallet string

	// Mint is the asset the intent requests access to.
	Mint string

	// Message is the exact byte sequence that was signed.
	Message string

	// Signature is the detached signature, encoded as standard base64 or base58.
	Signature string
}

var (
	// ErrMissingField is returned when a required request field is empty.
	ErrMissingField = errors.New("missing field")

	// ErrMalformedMessage is returned when the signed message does not bind
	// the requested mint or lacks the protocol tag.
	ErrMalformedMessage = errors.New("invalid message content")

	// ErrIntentExpired is returned when the message timestamp is absent or
	// outside the freshness window.
	ErrIntentExpired = errors.New("message expired")

	// ErrBadSignatureEncoding is returned when the signature or the wallet
	// address cannot be decoded.
	ErrBadSignatureEncoding = errors.New("invalid signature encoding")

	// ErrSignatureInvalid is returned when the signature does not verify
	// against the wallet's public key.
	ErrSignatureInvalid = errors.New("signature verify failed")
)

// IntentVerifier validates a SignedIntent.
//
// Verification is a pure function of the intent and wall-clock time:
// it performs no lookups and has no side effects.
type IntentVerifier interface {
	VerifyIntent(ctx context.Context, intent SignedIntent) error
}
