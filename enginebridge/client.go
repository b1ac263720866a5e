// Package enginebridge implements the wallet-engine port over the
// engine daemon's HTTP bridge: one endpoint per rail, JSON in and out,
// with client-side rate limiting and retries.
package enginebridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BlixtWallet/noah-sub000/send"
	"github.com/btcsuite/btcd/btcutil"
	"golang.org/x/time/rate"
)

// Config holds configuration for the engine bridge client.
type Config struct {
	// BaseURL is the base URL of the wallet engine's HTTP bridge.
	BaseURL string

	// RateLimit is the number of requests per second allowed.
	// Default: 10
	RateLimit int

	// Timeout is the HTTP request timeout.
	// Default: 30 seconds
	Timeout time.Duration

	// RetryAttempts is the number of retry attempts for failed
	// requests. Default: 3
	RetryAttempts int

	// RetryDelay is the delay between retry attempts.
	// Default: 1 second
	RetryDelay time.Duration
}

// DefaultConfig returns a default configuration for the given engine
// URL.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		RateLimit:     10,
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Validate validates the configuration and fills in defaults for
// unset fields.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("engine base URL required")
	}

	defaults := DefaultConfig(c.BaseURL)
	if c.RateLimit <= 0 {
		c.RateLimit = defaults.RateLimit
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = defaults.RetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaults.RetryDelay
	}
	return nil
}

// Client is an HTTP client for the wallet engine bridge with rate
// limiting. It implements send.WalletEngine.
type Client struct {
	cfg *Config

	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a new engine bridge client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: limiter,
	}, nil
}

// sendRequest is the common request body of the four dispatch
// endpoints. AmountSat is omitted for a fully invoice-fixed payment.
type sendRequest struct {
	Destination string `json:"destination"`
	AmountSat   *int64 `json:"amountSat,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

type onchainResponse struct {
	TxID string `json:"txid"`
}

type bolt11Response struct {
	Preimage  string `json:"preimage"`
	AmountSat int64  `json:"amountSat"`
}

type lnurlResponse struct {
	Preimage string `json:"preimage"`
}

type arkResponse struct {
	TxID string `json:"arkTxid"`
}

// doRequest performs an HTTP request with rate limiting and retries.
func (c *Client) doRequest(ctx context.Context, method, path string,
	body []byte) ([]byte, error) {

	url := c.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(
			ctx, method, url, reqBody,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w",
				err)
		}

		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < c.cfg.RetryAttempts {
				time.Sleep(
					c.cfg.RetryDelay *
						time.Duration(attempt+1),
				)
				continue
			}
			return nil, lastErr
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response "+
				"body: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited by engine (429)")
			if attempt < c.cfg.RetryAttempts {
				// Exponential backoff for rate limiting.
				time.Sleep(
					c.cfg.RetryDelay *
						time.Duration(attempt+1) * 2,
				)
				continue
			}

		case http.StatusNotFound:
			return nil, fmt.Errorf("resource not found (404): %s",
				string(respBody))

		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:

			lastErr = fmt.Errorf("engine error (%d): %s",
				resp.StatusCode, string(respBody))
			if attempt < c.cfg.RetryAttempts {
				time.Sleep(
					c.cfg.RetryDelay *
						time.Duration(attempt+1),
				)
				continue
			}

		default:
			return nil, fmt.Errorf("unexpected status code %d: %s",
				resp.StatusCode, string(respBody))
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w",
		c.cfg.RetryAttempts, lastErr)
}

// dispatch posts one send request and decodes the rail response shape
// into out.
func (c *Client) dispatch(ctx context.Context, path, dest string,
	amount *btcutil.Amount, comment string, out any) error {

	req := sendRequest{
		Destination: dest,
		Comment:     comment,
	}
	if amount != nil {
		sats := int64(*amount)
		req.AmountSat = &sats
	}

	body, err := json.Marshal(&req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	respBody, err := c.doRequest(ctx, "POST", path, body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse engine response: %w", err)
	}
	return nil
}

// SendOnchain dispatches a base-chain send.
func (c *Client) SendOnchain(ctx context.Context, address string,
	amount btcutil.Amount, comment string) (*send.OnchainResult, error) {

	var resp onchainResponse
	err := c.dispatch(
		ctx, "/v1/send/onchain", address, &amount, comment, &resp,
	)
	if err != nil {
		return nil, err
	}
	return &send.OnchainResult{TxID: resp.TxID}, nil
}

// PayBolt11 dispatches an invoice payment. The amount is nil for a
// fully invoice-fixed payment.
func (c *Client) PayBolt11(ctx context.Context, invoice string,
	amount *btcutil.Amount, comment string) (*send.Bolt11Result, error) {

	var resp bolt11Response
	err := c.dispatch(
		ctx, "/v1/send/bolt11", invoice, amount, comment, &resp,
	)
	if err != nil {
		return nil, err
	}
	return &send.Bolt11Result{
		Preimage:  resp.Preimage,
		AmountSat: btcutil.Amount(resp.AmountSat),
	}, nil
}

// PayLnurl dispatches a lightning-address payment.
func (c *Client) PayLnurl(ctx context.Context, address string,
	amount btcutil.Amount, comment string) (*send.LnurlResult, error) {

	var resp lnurlResponse
	err := c.dispatch(
		ctx, "/v1/send/lnurl", address, &amount, comment, &resp,
	)
	if err != nil {
		return nil, err
	}
	return &send.LnurlResult{Preimage: resp.Preimage}, nil
}

// SendArk dispatches an off-chain Ark send.
func (c *Client) SendArk(ctx context.Context, arkID string,
	amount btcutil.Amount, comment string) (*send.ArkResult, error) {

	var resp arkResponse
	err := c.dispatch(
		ctx, "/v1/send/ark", arkID, &amount, comment, &resp,
	)
	if err != nil {
		return nil, err
	}
	return &send.ArkResult{TxID: resp.TxID}, nil
}
