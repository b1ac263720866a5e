package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/BlixtWallet/noah-sub000/amount"
	"github.com/BlixtWallet/noah-sub000/destination"
	"github.com/BlixtWallet/noah-sub000/send"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestNewValidation rejects incomplete configuration and defaults
// unknown networks to testnet.
func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)

	_, err = New(&Config{})
	require.Error(t, err)

	c, err := New(&Config{EngineURL: "http://localhost:1", Network: "???"})
	require.NoError(t, err)
	defer c.Close()
	require.Equal(t, &chaincfg.TestNet3Params, c.Params())

	c2, err := New(&Config{EngineURL: "http://localhost:1", Network: "mainnet"})
	require.NoError(t, err)
	defer c2.Close()
	require.Equal(t, &chaincfg.MainNetParams, c2.Params())
}

// TestClientEndToEnd drives a full send attempt through a stubbed
// engine bridge and checks that the payment lands in history.
func TestClientEndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/send/onchain", r.URL.Path)

			var req map[string]any
			require.NoError(
				t, json.NewDecoder(r.Body).Decode(&req),
			)
			require.Equal(t, float64(1000), req["amountSat"])

			_, _ = w.Write([]byte(`{"txid": "e2e-txid"}`))
		},
	))
	t.Cleanup(server.Close)

	c, err := New(&Config{
		Network:     "mainnet",
		EngineURL:   server.URL,
		HistoryPath: filepath.Join(t.TempDir(), "payments.db"),
	})
	require.NoError(t, err)
	defer c.Close()

	a, err := c.NewAttempt()
	require.NoError(t, err)

	const addr = "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"
	require.NoError(t, a.SetDestination(addr))
	require.Equal(
		t, destination.KindOnchain, a.Classification().Kind,
	)

	a.Amount().SetDisplayText("1000")
	require.NoError(t, a.Confirm())

	rec, err := a.Dispatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "e2e-txid", rec.TxID)
	require.Equal(t, send.StateSucceeded, a.State())

	recs, err := c.History().List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, send.PaymentKindOnchain, recs[0].Kind)
	require.Equal(t, addr, recs[0].DestinationDisplay)
}

// TestClientMemoryHistory falls back to in-memory history when no
// database path is configured.
func TestClientMemoryHistory(t *testing.T) {
	t.Parallel()

	c, err := New(&Config{EngineURL: "http://localhost:1"})
	require.NoError(t, err)
	defer c.Close()

	recs, err := c.History().List(context.Background())
	require.NoError(t, err)
	require.Empty(t, recs)
}

// TestClientRates verifies the shared snapshot is wired into new
// attempts, so fiat entry converts at the fed rate.
func TestClientRates(t *testing.T) {
	t.Parallel()

	c, err := New(&Config{EngineURL: "http://localhost:1"})
	require.NoError(t, err)
	defer c.Close()

	c.Rates().Set(decimal.NewFromInt(50_000))

	a, err := c.NewAttempt()
	require.NoError(t, err)

	a.Amount().ToggleUnit()
	require.Equal(t, amount.UnitFiat, a.Amount().Unit())

	// 25 fiat units at 50k per coin is 50,000 sats.
	a.Amount().SetDisplayText("25")
	amt, err := a.Amount().AmountSat()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(50_000), amt)
}
