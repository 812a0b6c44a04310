// Package holders resolves whether a wallet is entitled to an asset,
// either by holding the mint directly or through verified collection
// membership.
package holders

import (
	"context"

	"go.uber.org/zap"

	"github.com/ibom-labs/media-auth/mediaauth"
)

// TokenHoldings answers direct ownership questions against the chain.
type TokenHoldings interface {
	// HasTokenBalance reports whether owner holds a positive balance of mint.
	HasTokenBalance(ctx context.Context, owner string, mint string) (bool, error)
}

// DeclaredCollection is an asset's parent collection declaration as recorded
// on chain. Verified is only true when the collection authority has
// countersigned the membership.
type DeclaredCollection struct {
	Key      string
	Verified bool
}

// CollectionReader reads an asset's collection declaration from its on-chain
// metadata.
type CollectionReader interface {
	CollectionOf(ctx context.Context, mint string) (DeclaredCollection, error)
}

// IndexedAsset is one asset owned by a wallet, as reported by an asset index.
type IndexedAsset struct {
	Mint               string
	CollectionKey      string
	CollectionVerified bool
}

// AssetIndex lists the assets a wallet owns.
type AssetIndex interface {
	AssetsByOwner(ctx context.Context, owner string) ([]IndexedAsset, error)
}

// Authorizer implements the ordered holder check: direct ownership first,
// then (on request) verified collection membership.
//
// Every upstream failure is logged and treated as a denial; the Authorize
// method itself never returns an error.
type Authorizer struct {
	holdings    TokenHoldings
	collections CollectionReader
	index       AssetIndex

	logger *zap.Logger
}

// NewAuthorizer returns a new Authorizer. The index may be nil, in which case
// the collection fallback always denies.
func NewAuthorizer(holdings TokenHoldings, collections CollectionReader, index AssetIndex, logger *zap.Logger) Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return Authorizer{
		holdings:    holdings,
		collections: collections,
		index:       index,
		logger:      logger,
	}
}

// Authorize implements the mediaauth.HolderAuthorizer interface.
func (a Authorizer) Authorize(ctx context.Context, wallet string, mint string, acceptCollection bool) (mediaauth.Authorization, error) {
	holds, err := a.holdings.HasTokenBalance(ctx, wallet, mint)
	if err != nil {
		a.logger.Warn("token balance lookup failed", zap.String("mint", mint), zap.Error(err))

		holds = false
	}

	if holds {
		return mediaauth.Authorization{
			Authorized: true,
			Scope:      mediaauth.ScopeMint,
		}, nil
	}

	if !acceptCollection {
		return mediaauth.Authorization{}, nil
	}

	return a.authorizeByCollection(ctx, wallet, mint), nil
}

func (a Authorizer) authorizeByCollection(ctx context.Context, wallet string, mint string) mediaauth.Authorization {
	declared, err := a.collections.CollectionOf(ctx, mint)
	if err != nil {
		a.logger.Warn("collection lookup failed", zap.String("mint", mint), zap.Error(err))

		return mediaauth.Authorization{}
	}

	denied := mediaauth.Authorization{CollectionKey: declared.Key}

	// An unverified declaration is attacker-controlled: anyone can point
	// their mint at a popular collection. Only a countersigned declaration
	// may delegate trust.
	if declared.Key == "" || !declared.Verified {
		return denied
	}

	if a.index == nil {
		a.logger.Warn("no asset index configured, denying collection access", zap.String("mint", mint))

		return denied
	}

	assets, err := a.index.AssetsByOwner(ctx, wallet)
	if err != nil {
		a.logger.Warn("asset index lookup failed", zap.String("owner", wallet), zap.Error(err))

		return denied
	}

	for _, asset := range assets {
		if asset.CollectionKey == declared.Key && asset.CollectionVerified {
			return mediaauth.Authorization{
				Authorized:    true,
				Scope:         mediaauth.ScopeCollection,
				CollectionKey: declared.Key,
			}
		}
	}

	return denied
}
