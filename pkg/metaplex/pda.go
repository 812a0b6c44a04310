package metaplex

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const pdaMarker = "ProgramDerivedAddress"

var errNoBumpFound = errors.New("no valid program address bump found")

// MetadataAddress derives the metadata program-derived address for mint,
// seeded with ("metadata", program id, mint).
func MetadataAddress(mint string) (string, error) {
	program, err := base58.Decode(ProgramID)
	if err != nil {
		return "", err
	}

	mintBytes, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decoding mint address: %w", err)
	}

	if len(mintBytes) != 32 {
		return "", fmt.Errorf("mint address is %d bytes, want 32", len(mintBytes))
	}

	seeds := [][]byte{[]byte("metadata"), program, mintBytes}

	address, _, err := findProgramAddress(seeds, program)
	if err != nil {
		return "", err
	}

	return base58.Encode(address), nil
}

// findProgramAddress searches bump seeds from 255 downward until the derived
// address falls off the Ed25519 curve, so that no private key can exist for it.
func findProgramAddress(seeds [][]byte, program []byte) ([]byte, byte, error) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(program)
		h.Write([]byte(pdaMarker))

		candidate := h.Sum(nil)

		if !isOnCurve(candidate) {
			return candidate, byte(bump), nil
		}
	}

	return nil, 0, errNoBumpFound
}

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)

	return err == nil
}
