package mediaauth

import (
	"context"
	"errors"
	"time"
)

// Capability is a short-lived credential authorizing one owner to stream one
// mint. It is carried entirely in URL parameters; the server keeps no record
// of issued capabilities (unless a single-use store is configured).
type Capability struct {
	Mint      string
	Owner     string
	ExpiresAt time.Time

	// Token is a URL-safe base64 HMAC over "mint:owner:expiresAtMs",
	// keyed with a server-held secret.
	Token string
}

var (
	// ErrCapabilityExpired is returned when a capability is redeemed after
	// its expiry.
	ErrCapabilityExpired = errors.New("link expired")

	// ErrCapabilityInvalid is returned when the token does not match the
	// recomputed MAC.
	ErrCapabilityInvalid = errors.New("invalid token")

	// ErrCapabilitySpent is returned when a capability is redeemed twice and
	// a single-use store is configured.
	ErrCapabilitySpent = errors.New("link already used")
)

// CapabilityIssuer mints a capability for an authorized (mint, owner) pair.
// Callers are responsible for gating issuance on a successful holder check.
type CapabilityIssuer interface {
	IssueCapability(ctx context.Context, mint string, owner string) (Capability, error)
}

// CapabilityValidator checks a capability presented for redemption.
type CapabilityValidator interface {
	ValidateCapability(ctx context.Context, capability Capability) error
}
