// Package metaplex reads token-metadata accounts: it derives the metadata
// address for a mint and decodes the Borsh-encoded fields the media gate
// cares about (uri and the collection declaration).
package metaplex

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ProgramID is the token-metadata program address.
const ProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

// Collection is an asset's parent collection declaration.
// Verified is set by the collection authority, not the asset creator.
type Collection struct {
	Verified bool
	Key      string
}

// Metadata is the subset of a token-metadata account this package decodes.
type Metadata struct {
	Name   string
	Symbol string
	URI    string

	Collection *Collection
}

// ErrTruncatedAccount is returned when account data ends before the fields
// being decoded.
var ErrTruncatedAccount = errors.New("truncated metadata account")

// accountReader sequentially decodes Borsh fields with a sticky error.
type accountReader struct {
	buf []byte
	pos int
	err error
}

func (r *accountReader) skip(n int) {
	if r.err != nil {
		return
	}

	if r.pos+n > len(r.buf) {
		r.err = ErrTruncatedAccount
		return
	}

	r.pos += n
}

func (r *accountReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}

	if r.pos+n > len(r.buf) {
		r.err = ErrTruncatedAccount
		return nil
	}

	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b
}

func (r *accountReader) u8() byte {
	b := r.bytes(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *accountReader) u32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *accountReader) str() string {
	length := int(r.u32())
	b := r.bytes(length)
	if b == nil {
		return ""
	}

	// Fixed-size metadata fields are zero padded inside the string.
	return strings.TrimRight(string(b), "\x00")
}

// ParseMetadata decodes a token-metadata account.
//
// Layout: key (1), update authority (32), mint (32), name/symbol/uri
// (borsh strings), seller fee (2), optional creators vector, primary sale and
// mutability flags (2), optional edition nonce, optional token standard,
// optional collection {verified (1), key (32)}.
func ParseMetadata(data []byte) (Metadata, error) {
	r := &accountReader{buf: data}

	r.skip(1 + 32 + 32)

	md := Metadata{
		Name:   r.str(),
		Symbol: r.str(),
		URI:    r.str(),
	}

	r.skip(2)

	if r.u8() == 1 {
		creators := int(r.u32())
		r.skip(creators * (32 + 1 + 1))
	}

	r.skip(1 + 1)

	if r.u8() == 1 {
		r.skip(1)
	}

	if r.u8() == 1 {
		r.skip(1)
	}

	if r.u8() == 1 {
		verified := r.u8() == 1
		key := r.bytes(32)

		if r.err == nil {
			md.Collection = &Collection{
				Verified: verified,
				Key:      base58.Encode(key),
			}
		}
	}

	if r.err != nil {
		return Metadata{}, r.err
	}

	return md, nil
}

// AccountSource fetches raw account data by address.
type AccountSource interface {
	AccountData(ctx context.Context, address string) ([]byte, error)
}

// Client reads metadata accounts through an AccountSource.
type Client struct {
	source AccountSource
}

// NewClient returns a new Client.
func NewClient(source AccountSource) *Client {
	return &Client{source: source}
}

// Metadata fetches and decodes the metadata account of mint.
func (c *Client) Metadata(ctx context.Context, mint string) (Metadata, error) {
	address, err := MetadataAddress(mint)
	if err != nil {
		return Metadata{}, fmt.Errorf("deriving metadata address: %w", err)
	}

	data, err := c.source.AccountData(ctx, address)
	if err != nil {
		return Metadata{}, err
	}

	md, err := ParseMetadata(data)
	if err != nil {
		return Metadata{}, fmt.Errorf("parsing metadata account %s: %w", address, err)
	}

	return md, nil
}
