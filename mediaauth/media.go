package mediaauth

import (
	"context"
	"errors"
)

var (
	// ErrMetadataUnresolved is returned when the asset's metadata record or
	// its off-chain document cannot be fetched.
	ErrMetadataUnresolved = errors.New("metadata unresolved")

	// ErrMediaNotFound is returned when the metadata document declares no
	// playable media.
	ErrMediaNotFound = errors.New("media not found in metadata")
)

// MediaResolver resolves a mint to a playable media URL via its metadata.
type MediaResolver interface {
	ResolveMedia(ctx context.Context, mint string) (string, error)
}
