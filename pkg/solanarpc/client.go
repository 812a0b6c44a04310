// Package solanarpc is a minimal JSON-RPC 2.0 client for the two chain reads
// the media gate needs: token account listings and raw account data.
package solanarpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
)

// DefaultCommitment is the confirmation level requested when none is configured.
const DefaultCommitment = "confirmed"

// ErrAccountNotFound is returned when the queried account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// Client talks to a Solana JSON-RPC endpoint.
type Client struct {
	endpoint   string
	commitment string
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

// WithCommitment sets the commitment level sent with every request.
func WithCommitment(commitment string) Option {
	return optionFunc(func(c *Client) {
		c.commitment = commitment
	})
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return optionFunc(func(c *Client) {
		c.httpClient = client
	})
}

// New returns a new Client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		commitment: DefaultCommitment,
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

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id.String(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calling %s: unexpected status %d", method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}

	if envelope.Error != nil {
		return fmt.Errorf("calling %s: %w", method, envelope.Error)
	}

	return json.Unmarshal(envelope.Result, result)
}

// TokenAccount is a token account balance entry.
type TokenAccount struct {
	Address string
	Amount  uint64
}

type tokenAccountsResult struct {
	Value []struct {
		Pubkey  string `json:"pubkey"`
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						TokenAmount struct {
							Amount string `json:"amount"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// TokenAccountsByOwner lists owner's token accounts holding mint.
func (c *Client) TokenAccountsByOwner(ctx context.Context, owner string, mint string) ([]TokenAccount, error) {
	params := []any{
		owner,
		map[string]string{"mint": mint},
		map[string]string{
			"encoding":   "jsonParsed",
			"commitment": c.commitment,
		},
	}

	var result tokenAccountsResult
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]TokenAccount, 0, len(result.Value))

	for _, entry := range result.Value {
		amount, err := strconv.ParseUint(entry.Account.Data.Parsed.Info.TokenAmount.Amount, 10, 64)
		if err != nil {
			continue
		}

		accounts = append(accounts, TokenAccount{
			Address: entry.Pubkey,
			Amount:  amount,
		})
	}

	return accounts, nil
}

type accountInfoResult struct {
	Value *struct {
		Data []string `json:"data"`
	} `json:"value"`
}

// AccountData fetches the raw data of an account.
// It returns ErrAccountNotFound if the account does not exist.
func (c *Client) AccountData(ctx context.Context, address string) ([]byte, error) {
	params := []any{
		address,
		map[string]string{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	var result accountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Value == nil || len(result.Value.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decoding account data: %w", err)
	}

	return data, nil
}
