package capability

import (
	"context"
	"time"
)

// Store tracks redeemed tokens for single-use validation.
//
// By default capabilities are stateless and replayable until expiry; wiring a
// Store into a Validator trades that statelessness for single-use semantics.
type Store interface {
	// Redeem marks token as spent and reports whether it had already been
	// spent. Entries only need to survive for ttl, after which the token is
	// rejected as expired anyway.
	Redeem(ctx context.Context, token string, ttl time.Duration) (bool, error)
}
