package mediaauth

import (
	"context"
	"errors"
)

// Scope identifies which rule granted access to an asset.
type Scope string

const (
	// ScopeMint means the wallet holds the requested mint directly.
	ScopeMint Scope = "mint"

	// ScopeCollection means the wallet holds another asset with verified
	// membership in the mint's verified collection.
	ScopeCollection Scope = "collection"

	// ScopeNone means no rule granted access.
	ScopeNone Scope = ""
)

// Authorization is the outcome of a holder check.
type Authorization struct {
	Authorized bool
	Scope      Scope

	// CollectionKey is the mint's declared parent collection,
	// set only when the collection path was consulted.
	CollectionKey string
}

// ErrNotHolder is returned when a verified intent fails the holder check.
var ErrNotHolder = errors.New("not a holder")

// HolderAuthorizer decides whether wallet is entitled to mint.
//
// Implementations MUST fail closed: any upstream lookup failure results in
// an unauthorized result, never an error surfaced to the caller.
type HolderAuthorizer interface {
	Authorize(ctx context.Context, wallet string, mint string, acceptCollection bool) (Authorization, error)
}
