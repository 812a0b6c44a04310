// Package media resolves assets to playable media URLs through their
// metadata documents.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ibom-labs/media-auth/mediaauth"
)

// MetadataSource resolves a mint to its off-chain metadata document URI.
type MetadataSource interface {
	MetadataURI(ctx context.Context, mint string) (string, error)
}

// Resolver fetches an asset's metadata document and picks a playable URL:
// animation_url when present, otherwise the first declared audio file.
type Resolver struct {
	source     MetadataSource
	httpClient *http.Client
}

// ResolverOption configures a Resolver.
type ResolverOption interface {
	apply(r *Resolver)
}

type resolverOptionFunc func(r *Resolver)

func (fn resolverOptionFunc) apply(r *Resolver) {
	fn(r)
}

// WithHTTPClient sets the HTTP client used for metadata document fetches.
func WithHTTPClient(client *http.Client) ResolverOption {
	return resolverOptionFunc(func(r *Resolver) {
		r.httpClient = client
	})
}

// NewResolver returns a new Resolver.
func NewResolver(source MetadataSource, opts ...ResolverOption) Resolver {
	r := Resolver{
		source:     source,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt.apply(&r)
	}

	return r
}

type document struct {
	AnimationURL string `json:"animation_url"`
	Properties   struct {
		Files []fileEntry `json:"files"`
	} `json:"properties"`
}

type fileEntry struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// ResolveMedia implements the mediaauth.MediaResolver interface.
func (r Resolver) ResolveMedia(ctx context.Context, mint string) (string, error) {
	uri, err := r.source.MetadataURI(ctx, mint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", mediaauth.ErrMetadataUnresolved, err)
	}

	if uri == "" {
		return "", fmt.Errorf("%w: metadata uri missing", mediaauth.ErrMetadataUnresolved)
	}

	doc, err := r.fetchDocument(ctx, uri)
	if err != nil {
		return "", err
	}

	if doc.AnimationURL != "" {
		return doc.AnimationURL, nil
	}

	for _, file := range doc.Properties.Files {
		if strings.HasPrefix(file.Type, "audio/") && file.URI != "" {
			return file.URI, nil
		}
	}

	return "", mediaauth.ErrMediaNotFound
}

func (r Resolver) fetchDocument(ctx context.Context, uri string) (document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return document{}, fmt.Errorf("%w: %v", mediaauth.ErrMetadataUnresolved, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return document{}, fmt.Errorf("%w: %v", mediaauth.ErrMetadataUnresolved, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return document{}, fmt.Errorf("%w: metadata fetch returned %d", mediaauth.ErrMetadataUnresolved, resp.StatusCode)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		// An unparseable document is treated as one declaring no media.
		return document{}, mediaauth.ErrMediaNotFound
	}

	return doc, nil
}
