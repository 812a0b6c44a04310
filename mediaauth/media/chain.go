package media

import (
	"context"

	"github.com/ibom-labs/media-auth/pkg/metaplex"
)

// ChainMetadataSource implements MetadataSource against token-metadata
// accounts.
type ChainMetadataSource struct {
	metadata *metaplex.Client
}

// NewChainMetadataSource returns a new ChainMetadataSource.
func NewChainMetadataSource(metadata *metaplex.Client) ChainMetadataSource {
	return ChainMetadataSource{metadata: metadata}
}

// MetadataURI implements the MetadataSource interface.
func (s ChainMetadataSource) MetadataURI(ctx context.Context, mint string) (string, error) {
	md, err := s.metadata.Metadata(ctx, mint)
	if err != nil {
		return "", err
	}

	return md.URI, nil
}
