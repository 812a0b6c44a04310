// Package intent verifies signed media access intents.
package intent

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mr-tron/base58"

	"github.com/ibom-labs/media-auth/mediaauth"
)

// DefaultTTL is the default freshness window for signed messages.
const DefaultTTL = 120 * time.Second

var timestampPattern = regexp.MustCompile(`ts=(\d+)`)

// Verifier checks signed intents against the message contract:
// the message must bind the requested mint, carry the protocol tag and a
// fresh timestamp, and verify as a detached Ed25519 signature from the wallet.
type Verifier struct {
	ttl   time.Duration
	clock clockwork.Clock
}

// VerifierOption configures a Verifier.
type VerifierOption interface {
	apply(v *Verifier)
}

type verifierOptionFunc func(v *Verifier)

func (fn verifierOptionFunc) apply(v *Verifier) {
	fn(v)
}

// WithClock sets the clock in a Verifier.
func WithClock(clock clockwork.Clock) VerifierOption {
	return verifierOptionFunc(func(v *Verifier) {
		v.clock = clock
	})
}

// NewVerifier returns a new Verifier.
func NewVerifier(ttl time.Duration, opts ...VerifierOption) Verifier {
	v := Verifier{
		ttl:   ttl,
		clock: clockwork.NewRealClock(),
	}

	if v.ttl == 0 {
		v.ttl = DefaultTTL
	}

	for _, opt := range opts {
		opt.apply(&v)
	}

	return v
}

// VerifyIntent implements the mediaauth.IntentVerifier interface.
func (v Verifier) VerifyIntent(_ context.Context, intent mediaauth.SignedIntent) error {
	switch {
	case intent.Wallet == "":
		return fmt.Errorf("%w: wallet", mediaauth.ErrMissingField)
	case intent.Signature == "":
		return fmt.Errorf("%w: sig", mediaauth.ErrMissingField)
	case intent.Message == "":
		return fmt.Errorf("%w: msg", mediaauth.ErrMissingField)
	}

	// Substring binding runs before any cryptography: a signature minted for
	// another mint must not even reach verification.
	if !strings.Contains(intent.Message, "mint="+intent.Mint) || !strings.Contains(intent.Message, mediaauth.MessageTag) {
		return mediaauth.ErrMalformedMessage
	}

	if err := v.checkFreshness(intent.Message); err != nil {
		return err
	}

	signature, err := decodeSignature(intent.Signature)
	if err != nil {
		return err
	}

	publicKey, err := base58.Decode(intent.Wallet)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: wallet is not a public key", mediaauth.ErrBadSignatureEncoding)
	}

	if !ed25519.Verify(publicKey, []byte(intent.Message), signature) {
		return mediaauth.ErrSignatureInvalid
	}

	return nil
}

func (v Verifier) checkFreshness(message string) error {
	match := timestampPattern.FindStringSubmatch(message)
	if match == nil {
		return mediaauth.ErrIntentExpired
	}

	ts, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || ts == 0 {
		return mediaauth.ErrIntentExpired
	}

	if v.clock.Now().UnixMilli()-ts > v.ttl.Milliseconds() {
		return mediaauth.ErrIntentExpired
	}

	return nil
}

func decodeSignature(signature string) ([]byte, error) {
	// A base58 signature can coincidentally be valid base64 of the wrong
	// length, so each decoding only counts when it yields signature bytes.
	if raw, err := base64.StdEncoding.DecodeString(signature); err == nil && len(raw) == ed25519.SignatureSize {
		return raw, nil
	}

	if raw, err := base58.Decode(signature); err == nil && len(raw) == ed25519.SignatureSize {
		return raw, nil
	}

	return nil, mediaauth.ErrBadSignatureEncoding
}
