// Package client wires the send subsystem into one embeddable client:
// network parameters, the engine bridge, the exchange-rate snapshot
// and the payment history store.
package client

import (
	"fmt"

	"github.com/BlixtWallet/noah-sub000/enginebridge"
	"github.com/BlixtWallet/noah-sub000/history"
	"github.com/BlixtWallet/noah-sub000/rates"
	"github.com/BlixtWallet/noah-sub000/send"
	"github.com/btcsuite/btcd/chaincfg"
)

// Config holds client configuration.
type Config struct {
	// Network selects the active network:
	// "mainnet", "testnet", "signet" or "regtest".
	Network string

	// EngineURL is the base URL of the wallet engine's HTTP bridge.
	EngineURL string

	// HistoryPath is the path of the payments database. When empty,
	// history is kept in memory only.
	HistoryPath string
}

// Client is the embeddable send client. One client serves many send
// attempts; each send screen instance creates a fresh attempt.
type Client struct {
	cfg *Config

	params  *chaincfg.Params
	engine  *enginebridge.Client
	history history.Store
	rates   *rates.Snapshot
}

// New creates a new send client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if cfg.EngineURL == "" {
		return nil, fmt.Errorf("engine URL required")
	}

	// Determine network parameters.
	var netParams *chaincfg.Params
	switch cfg.Network {
	case "mainnet":
		netParams = &chaincfg.MainNetParams
	case "testnet":
		netParams = &chaincfg.TestNet3Params
	case "signet":
		netParams = &chaincfg.SigNetParams
	case "regtest":
		netParams = &chaincfg.RegressionNetParams
	default:
		netParams = &chaincfg.TestNet3Params
	}

	engine, err := enginebridge.NewClient(
		enginebridge.DefaultConfig(cfg.EngineURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine bridge: %w",
			err)
	}

	var store history.Store
	if cfg.HistoryPath != "" {
		store, err = history.NewSqliteStore(cfg.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w",
				err)
		}
	} else {
		store = history.NewMemoryStore()
	}

	return &Client{
		cfg:     cfg,
		params:  netParams,
		engine:  engine,
		history: store,
		rates:   rates.NewSnapshot(),
	}, nil
}

// NewAttempt creates a fresh send attempt for one send screen
// instance.
func (c *Client) NewAttempt() (*send.Attempt, error) {
	return send.NewAttempt(&send.Config{
		Engine:  c.engine,
		History: c.history,
		Params:  c.params,
		Rates:   c.rates,
	})
}

// Rates returns the exchange-rate snapshot fed by the market-data
// collaborator.
func (c *Client) Rates() *rates.Snapshot {
	return c.rates
}

// History returns the payment history store.
func (c *Client) History() history.Store {
	return c.history
}

// Params returns the active network parameters.
func (c *Client) Params() *chaincfg.Params {
	return c.params
}

// Close releases the client's resources.
func (c *Client) Close() error {
	return c.history.Close()
}
