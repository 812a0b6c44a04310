// Package capability issues and validates HMAC-signed stream capabilities.
//
// A capability binds (mint, owner, expiry) into a URL-safe token:
//
//	token = base64url(HMAC-SHA256(secret, "<mint>:<owner>:<expMs>"))
//
// The server stores nothing per token; possession of an unexpired URL is the
// whole credential.
package capability

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ibom-labs/media-auth/mediaauth"
)

// DefaultTTL is the default capability lifetime.
const DefaultTTL = 60 * time.Second

type signer struct {
	secret []byte
}

func (s signer) sign(mint string, owner string, expMs int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%s:%d", mint, owner, expMs)

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Issuer mints capabilities.
type Issuer struct {
	signer signer
	ttl    time.Duration
	clock  clockwork.Clock
}

// IssuerOption configures an Issuer.
type IssuerOption interface {
	applyIssuer(i *Issuer)
}

// NewIssuer returns a new Issuer signing with secret.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) Issuer {
	i := Issuer{
		signer: signer{secret: []byte(secret)},
		ttl:    ttl,
		clock:  clockwork.NewRealClock(),
	}

	if i.ttl == 0 {
		i.ttl = DefaultTTL
	}

	for _, opt := range opts {
		opt.applyIssuer(&i)
	}

	return i
}

// IssueCapability implements the mediaauth.CapabilityIssuer interface.
func (i Issuer) IssueCapability(_ context.Context, mint string, owner string) (mediaauth.Capability, error) {
	expiresAt := i.clock.Now().Add(i.ttl)

	return mediaauth.Capability{
		Mint:      mint,
		Owner:     owner,
		ExpiresAt: expiresAt,
		Token:     i.signer.sign(mint, owner, expiresAt.UnixMilli()),
	}, nil
}

// Validator checks redeemed capabilities.
type Validator struct {
	signer signer
	clock  clockwork.Clock
	store  Store
}

// ValidatorOption configures a Validator.
type ValidatorOption interface {
	applyValidator(v *Validator)
}

// NewValidator returns a new Validator checking tokens against secret.
func NewValidator(secret string, opts ...ValidatorOption) Validator {
	v := Validator{
		signer: signer{secret: []byte(secret)},
		clock:  clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt.applyValidator(&v)
	}

	return v
}

// ValidateCapability implements the mediaauth.CapabilityValidator interface.
func (v Validator) ValidateCapability(ctx context.Context, capability mediaauth.Capability) error {
	now := v.clock.Now()

	if now.After(capability.ExpiresAt) {
		return mediaauth.ErrCapabilityExpired
	}

	expected := v.signer.sign(capability.Mint, capability.Owner, capability.ExpiresAt.UnixMilli())
	if !hmac.Equal([]byte(expected), []byte(capability.Token)) {
		return mediaauth.ErrCapabilityInvalid
	}

	if v.store != nil {
		spent, err := v.store.Redeem(ctx, capability.Token, capability.ExpiresAt.Sub(now))
		if err != nil {
			return fmt.Errorf("capability store: %w", err)
		}

		if spent {
			return mediaauth.ErrCapabilitySpent
		}
	}

	return nil
}

// ClockOption sets the clock in an Issuer or a Validator.
type ClockOption struct {
	clock clockwork.Clock
}

func (o ClockOption) applyIssuer(i *Issuer) {
	i.clock = o.clock
}

func (o ClockOption) applyValidator(v *Validator) {
	v.clock = o.clock
}

// WithClock sets the clock in an Issuer or a Validator.
func WithClock(clock clockwork.Clock) ClockOption {
	return ClockOption{clock: clock}
}

type storeOption struct {
	store Store
}

func (o storeOption) applyValidator(v *Validator) {
	v.store = o.store
}

// WithStore enables single-use redemption backed by store.
func WithStore(store Store) ValidatorOption {
	return storeOption{store: store}
}
