package holders

import (
	"context"

	"github.com/ibom-labs/media-auth/pkg/helius"
	"github.com/ibom-labs/media-auth/pkg/metaplex"
	"github.com/ibom-labs/media-auth/pkg/solanarpc"
)

// ChainHoldings implements TokenHoldings against a Solana RPC node.
type ChainHoldings struct {
	rpc *solanarpc.Client
}

// NewChainHoldings returns a new ChainHoldings.
func NewChainHoldings(rpc *solanarpc.Client) ChainHoldings {
	return ChainHoldings{rpc: rpc}
}

// HasTokenBalance implements the TokenHoldings interface.
func (h ChainHoldings) HasTokenBalance(ctx context.Context, owner string, mint string) (bool, error) {
	accounts, err := h.rpc.TokenAccountsByOwner(ctx, owner, mint)
	if err != nil {
		return false, err
	}

	for _, account := range accounts {
		if account.Amount > 0 {
			return true, nil
		}
	}

	return false, nil
}

// MetadataCollections implements CollectionReader against token-metadata
// accounts.
type MetadataCollections struct {
	metadata *metaplex.Client
}

// NewMetadataCollections returns a new MetadataCollections.
func NewMetadataCollections(metadata *metaplex.Client) MetadataCollections {
	return MetadataCollections{metadata: metadata}
}

// CollectionOf implements the CollectionReader interface.
func (c MetadataCollections) CollectionOf(ctx context.Context, mint string) (DeclaredCollection, error) {
	md, err := c.metadata.Metadata(ctx, mint)
	if err != nil {
		return DeclaredCollection{}, err
	}

	if md.Collection == nil {
		return DeclaredCollection{}, nil
	}

	return DeclaredCollection{
		Key:      md.Collection.Key,
		Verified: md.Collection.Verified,
	}, nil
}

// HeliusIndex implements AssetIndex against the Helius DAS API.
type HeliusIndex struct {
	client *helius.Client
}

// NewHeliusIndex returns a new HeliusIndex.
func NewHeliusIndex(client *helius.Client) HeliusIndex {
	return HeliusIndex{client: client}
}

// AssetsByOwner implements the AssetIndex interface.
func (i HeliusIndex) AssetsByOwner(ctx context.Context, owner string) ([]IndexedAsset, error) {
	assets, err := i.client.AssetsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	indexed := make([]IndexedAsset, 0, len(assets))

	for _, asset := range assets {
		indexed = append(indexed, IndexedAsset{
			Mint:               asset.ID,
			CollectionKey:      asset.CollectionKey,
			CollectionVerified: asset.CollectionVerified,
		})
	}

	return indexed, nil
}
