package mediaauth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MediaService implements the holder-gated media access protocol:
// a sign cycle (verify intent, resolve holdership, issue a capability)
// and an independent stream cycle (validate capability, locate media).
type MediaService interface {
	// SignHandler handles a request for a capability URL.
	SignHandler(ctx context.Context, r SignRequest) (SignResponse, error)

	// StreamHandler handles a capability redemption.
	StreamHandler(ctx context.Context, r StreamRequest) (StreamResponse, error)
}

type SignRequest struct {
	Mint             string
	Wallet           string
	Signature        string
	Message          string
	AcceptCollection bool
}

type SignResponse struct {
	Capability Capability
	Scope      Scope
}

type StreamRequest struct {
	Mint  string
	Owner string

	// Exp is the claimed expiry in epoch milliseconds, as carried on the wire.
	Exp   int64
	Token string
}

type StreamResponse struct {
	// Location is the resolved playable media URL.
	Location string
}

// MediaServiceImpl composes the protocol components.
// Every field is required; Logger may be zap.NewNop().
type MediaServiceImpl struct {
	Verifier   IntentVerifier
	Authorizer HolderAuthorizer
	Issuer     CapabilityIssuer
	Validator  CapabilityValidator
	Media      MediaResolver

	Logger *zap.Logger
}

func (s MediaServiceImpl) SignHandler(ctx context.Context, r SignRequest) (SignResponse, error) {
	if r.Mint == "" {
		return SignResponse{}, fmt.Errorf("%w: mint", ErrMissingField)
	}

	intent := SignedIntent{
		Wallet:    r.Wallet,
		Mint:      r.Mint,
		Message:   r.Message,
		Signature: r.Signature,
	}

	if err := s.Verifier.VerifyIntent(ctx, intent); err != nil {
		return SignResponse{}, err
	}

	authorization, err := s.Authorizer.Authorize(ctx, r.Wallet, r.Mint, r.AcceptCollection)
	if err != nil {
		// Authorizers are expected to fail closed themselves; treat a
		// surfaced error the same way.
		s.Logger.Warn("holder check failed", zap.String("mint", r.Mint), zap.Error(err))

		authorization = Authorization{}
	}

	if !authorization.Authorized {
		return SignResponse{}, ErrNotHolder
	}

	capability, err := s.Issuer.IssueCapability(ctx, r.Mint, r.Wallet)
	if err != nil {
		return SignResponse{}, fmt.Errorf("issuing capability: %w", err)
	}

	s.Logger.Debug(
		"media access granted",
		zap.String("mint", r.Mint),
		zap.String("scope", string(authorization.Scope)),
	)

	return SignResponse{
		Capability: capability,
		Scope:      authorization.Scope,
	}, nil
}

func (s MediaServiceImpl) StreamHandler(ctx context.Context, r StreamRequest) (StreamResponse, error) {
	if r.Mint == "" || r.Owner == "" || r.Token == "" || r.Exp == 0 {
		return StreamResponse{}, ErrMissingField
	}

	capability := Capability{
		Mint:      r.Mint,
		Owner:     r.Owner,
		ExpiresAt: time.UnixMilli(r.Exp),
		Token:     r.Token,
	}

	if err := s.Validator.ValidateCapability(ctx, capability); err != nil {
		return StreamResponse{}, err
	}

	location, err := s.Media.ResolveMedia(ctx, r.Mint)
	if err != nil {
		return StreamResponse{}, err
	}

	s.Logger.Debug("capability redeemed", zap.String("mint", r.Mint))

	return StreamResponse{Location: location}, nil
}
