// Package helius is a client for the Helius DAS (Digital Asset Standard) API,
// used to enumerate the assets a wallet owns.
package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	mainnetEndpoint = "https://mainnet.helius-rpc.com/"
	devnetEndpoint  = "https://devnet.helius-rpc.com/"

	assetPageLimit = 1000
)

// Asset is one owned asset with its collection declaration,
// as reported by the index.
type Asset struct {
	ID                 string
	CollectionKey      string
	CollectionVerified bool
}

// Client calls the DAS JSON-RPC API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option interface {
	apply(c *Client)
}

type optionFunc func(c *Client)

func (fn optionFunc) apply(c *Client) {
	fn(c)
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return optionFunc(func(c *Client) {
		c.httpClient = client
	})
}

// WithEndpoint overrides the network endpoint. Intended for tests.
func WithEndpoint(endpoint string) Option {
	return optionFunc(func(c *Client) {
		c.endpoint = endpoint
	})
}

// New returns a new Client authenticating with apiKey.
// The devnet flag selects the devnet endpoint over mainnet.
func New(apiKey string, devnet bool, opts ...Option) *Client {
	endpoint := mainnetEndpoint
	if devnet {
		endpoint = devnetEndpoint
	}

	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		opt.apply(c)
	}

	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type assetsByOwnerParams struct {
	OwnerAddress string `json:"ownerAddress"`
	Page         int    `json:"page"`
	Limit        int    `json:"limit"`
}

type assetsByOwnerResponse struct {
	Result struct {
		Items []assetEnvelope `json:"items"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type assetEnvelope struct {
	ID      string `json:"id"`
	Content struct {
		Metadata struct {
			Collection struct {
				Key      string `json:"key"`
				Verified bool   `json:"verified"`
			} `json:"collection"`
		} `json:"metadata"`
	} `json:"content"`
}

// AssetsByOwner lists the assets owned by owner (first page, up to 1000).
func (c *Client) AssetsByOwner(ctx context.Context, owner string) ([]Asset, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "owner-assets",
		Method:  "getAssetsByOwner",
		Params: assetsByOwnerParams{
			OwnerAddress: owner,
			Page:         1,
			Limit:        assetPageLimit,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?api-key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling getAssetsByOwner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calling getAssetsByOwner: unexpected status %d", resp.StatusCode)
	}

	var envelope assetsByOwnerResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding getAssetsByOwner response: %w", err)
	}

	if envelope.Error != nil {
		return nil, fmt.Errorf("getAssetsByOwner: rpc error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}

	assets := make([]Asset, 0, len(envelope.Result.Items))

	for _, item := range envelope.Result.Items {
		assets = append(assets, Asset{
			ID:                 item.ID,
			CollectionKey:      item.Content.Metadata.Collection.Key,
			CollectionVerified: item.Content.Metadata.Collection.Verified,
		})
	}

	return assets, nil
}
