package intent

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibom-labs/media-auth/mediaauth"
)

const testMint = "So11111111111111111111111111111111111111112"

type signingWallet struct {
	address    string
	privateKey ed25519.PrivateKey
}

func newSigningWallet(t *testing.T) signingWallet {
	t.Helper()

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return signingWallet{
		address:    base58.Encode(publicKey),
		privateKey: privateKey,
	}
}

func (w signingWallet) sign(message string) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(w.privateKey, []byte(message)))
}

func signMessage(mint string, ts int64) string {
	return fmt.Sprintf("%s|mint=%s|ts=%d", mediaauth.MessageTag, mint, ts)
}

func TestVerifier_VerifyIntent(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	clock := clockwork.NewFakeClockAt(now)
	verifier := NewVerifier(DefaultTTL, WithClock(clock))

	wallet := newSigningWallet(t)

	t.Run("OK", func(t *testing.T) {
		message := signMessage(testMint, now.UnixMilli())

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: wallet.sign(message),
		})
		require.NoError(t, err)
	})

	t.Run("Base58Signature", func(t *testing.T) {
		message := signMessage(testMint, now.UnixMilli())
		signature := base58.Encode(ed25519.Sign(wallet.privateKey, []byte(message)))

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: signature,
		})
		require.NoError(t, err)
	})

	t.Run("MissingFields", func(t *testing.T) {
		message := signMessage(testMint, now.UnixMilli())
		signature := wallet.sign(message)

		testCases := []struct {
			name   string
			intent mediaauth.SignedIntent
		}{
			{
				name:   "Wallet",
				intent: mediaauth.SignedIntent{Mint: testMint, Message: message, Signature: signature},
			},
			{
				name:   "Signature",
				intent: mediaauth.SignedIntent{Wallet: wallet.address, Mint: testMint, Message: message},
			},
			{
				name:   "Message",
				intent: mediaauth.SignedIntent{Wallet: wallet.address, Mint: testMint, Signature: signature},
			},
		}

		for _, testCase := range testCases {
			testCase := testCase

			t.Run(testCase.name, func(t *testing.T) {
				err := verifier.VerifyIntent(context.Background(), testCase.intent)

				assert.ErrorIs(t, err, mediaauth.ErrMissingField)
			})
		}
	})

	t.Run("MintBinding", func(t *testing.T) {
		otherMint := "AnotherMint1111111111111111111111111111111"
		message := signMessage(otherMint, now.UnixMilli())

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: wallet.sign(message),
		})

		assert.ErrorIs(t, err, mediaauth.ErrMalformedMessage)
	})

	t.Run("MissingTag", func(t *testing.T) {
		message := fmt.Sprintf("mint=%s|ts=%d", testMint, now.UnixMilli())

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: wallet.sign(message),
		})

		assert.ErrorIs(t, err, mediaauth.ErrMalformedMessage)
	})

	t.Run("FreshnessBoundary", func(t *testing.T) {
		ttlMs := DefaultTTL.Milliseconds()

		t.Run("JustInside", func(t *testing.T) {
			message := signMessage(testMint, now.UnixMilli()-ttlMs+1)

			err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
				Wallet:    wallet.address,
				Mint:      testMint,
				Message:   message,
				Signature: wallet.sign(message),
			})
			require.NoError(t, err)
		})

		t.Run("JustOutside", func(t *testing.T) {
			message := signMessage(testMint, now.UnixMilli()-ttlMs-1)

			err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
				Wallet:    wallet.address,
				Mint:      testMint,
				Message:   message,
				Signature: wallet.sign(message),
			})

			assert.ErrorIs(t, err, mediaauth.ErrIntentExpired)
		})
	})

	t.Run("MissingTimestamp", func(t *testing.T) {
		message := fmt.Sprintf("%s|mint=%s", mediaauth.MessageTag, testMint)

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: wallet.sign(message),
		})

		assert.ErrorIs(t, err, mediaauth.ErrIntentExpired)
	})

	t.Run("ZeroTimestamp", func(t *testing.T) {
		message := signMessage(testMint, 0)

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: wallet.sign(message),
		})

		assert.ErrorIs(t, err, mediaauth.ErrIntentExpired)
	})

	t.Run("BadSignatureEncoding", func(t *testing.T) {
		message := signMessage(testMint, now.UnixMilli())

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: "!!!not-an-encoding!!!",
		})

		assert.ErrorIs(t, err, mediaauth.ErrBadSignatureEncoding)
	})

	t.Run("TruncatedSignature", func(t *testing.T) {
		message := signMessage(testMint, now.UnixMilli())

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: base64.StdEncoding.EncodeToString([]byte("short")),
		})

		assert.ErrorIs(t, err, mediaauth.ErrBadSignatureEncoding)
	})

	t.Run("BadWallet", func(t *testing.T) {
		message := signMessage(testMint, now.UnixMilli())

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    "tooshort",
			Mint:      testMint,
			Message:   message,
			Signature: wallet.sign(message),
		})

		assert.ErrorIs(t, err, mediaauth.ErrBadSignatureEncoding)
	})

	t.Run("WrongKey", func(t *testing.T) {
		other := newSigningWallet(t)
		message := signMessage(testMint, now.UnixMilli())

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message,
			Signature: other.sign(message),
		})

		assert.ErrorIs(t, err, mediaauth.ErrSignatureInvalid)
	})

	t.Run("TamperedMessage", func(t *testing.T) {
		message := signMessage(testMint, now.UnixMilli())
		signature := wallet.sign(message)

		err := verifier.VerifyIntent(context.Background(), mediaauth.SignedIntent{
			Wallet:    wallet.address,
			Mint:      testMint,
			Message:   message + " ",
			Signature: signature,
		})

		assert.ErrorIs(t, err, mediaauth.ErrSignatureInvalid)
	})
}
