package capability

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibom-labs/media-auth/mediaauth"
)

const (
	testSecret = "test-secret"
	testMint   = "So11111111111111111111111111111111111111112"
	testOwner  = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

func TestIssuer_IssueCapability(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	clock := clockwork.NewFakeClockAt(now)

	issuer := NewIssuer(testSecret, time.Minute, WithClock(clock))

	capability, err := issuer.IssueCapability(context.Background(), testMint, testOwner)
	require.NoError(t, err)

	assert.Equal(t, testMint, capability.Mint)
	assert.Equal(t, testOwner, capability.Owner)
	assert.Equal(t, now.Add(time.Minute).UnixMilli(), capability.ExpiresAt.UnixMilli())
	assert.NotEmpty(t, capability.Token)
}

func TestValidator_ValidateCapability(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	clock := clockwork.NewFakeClockAt(now)

	issuer := NewIssuer(testSecret, time.Minute, WithClock(clock))
	validator := NewValidator(testSecret, WithClock(clock))

	issue := func(t *testing.T) mediaauth.Capability {
		t.Helper()

		capability, err := issuer.IssueCapability(context.Background(), testMint, testOwner)
		require.NoError(t, err)

		return capability
	}

	t.Run("OK", func(t *testing.T) {
		err := validator.ValidateCapability(context.Background(), issue(t))
		require.NoError(t, err)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		capability := issue(t)

		flipped := []byte(capability.Token)
		if flipped[0] == 'A' {
			flipped[0] = 'B'
		} else {
			flipped[0] = 'A'
		}
		capability.Token = string(flipped)

		err := validator.ValidateCapability(context.Background(), capability)

		assert.ErrorIs(t, err, mediaauth.ErrCapabilityInvalid)
	})

	t.Run("TamperedExpiry", func(t *testing.T) {
		capability := issue(t)
		capability.ExpiresAt = capability.ExpiresAt.Add(time.Hour)

		err := validator.ValidateCapability(context.Background(), capability)

		assert.ErrorIs(t, err, mediaauth.ErrCapabilityInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewValidator("another-secret", WithClock(clock))

		err := other.ValidateCapability(context.Background(), issue(t))

		assert.ErrorIs(t, err, mediaauth.ErrCapabilityInvalid)
	})

	t.Run("ExpiryBoundary", func(t *testing.T) {
		capability := issue(t)

		t.Run("AtExpiry", func(t *testing.T) {
			atExpiry := NewValidator(testSecret, WithClock(clockwork.NewFakeClockAt(capability.ExpiresAt)))

			err := atExpiry.ValidateCapability(context.Background(), capability)
			require.NoError(t, err)
		})

		t.Run("PastExpiry", func(t *testing.T) {
			pastExpiry := NewValidator(testSecret, WithClock(clockwork.NewFakeClockAt(capability.ExpiresAt.Add(time.Millisecond))))

			err := pastExpiry.ValidateCapability(context.Background(), capability)

			assert.ErrorIs(t, err, mediaauth.ErrCapabilityExpired)
		})
	})

	t.Run("SingleUse", func(t *testing.T) {
		store := NewMemoryStoreWithClock(clock)
		singleUse := NewValidator(testSecret, WithClock(clock), WithStore(store))

		capability := issue(t)

		err := singleUse.ValidateCapability(context.Background(), capability)
		require.NoError(t, err)

		err = singleUse.ValidateCapability(context.Background(), capability)

		assert.ErrorIs(t, err, mediaauth.ErrCapabilitySpent)
	})
}

func TestMemoryStore_Redeem(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	clock := clockwork.NewFakeClockAt(now)

	store := NewMemoryStoreWithClock(clock)

	spent, err := store.Redeem(context.Background(), "token", time.Minute)
	require.NoError(t, err)
	assert.False(t, spent)

	spent, err = store.Redeem(context.Background(), "token", time.Minute)
	require.NoError(t, err)
	assert.True(t, spent)

	clock.Advance(2 * time.Minute)

	// The entry is swept after its TTL; the token itself is long expired by
	// then, so forgetting it is safe.
	spent, err = store.Redeem(context.Background(), "token", time.Minute)
	require.NoError(t, err)
	assert.False(t, spent)
}
