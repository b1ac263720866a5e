package enginebridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BlixtWallet/noah-sub000/send"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

var _ send.WalletEngine = (*Client)(nil)

type capturedRequest struct {
	path string
	body map[string]any
}

// newTestClient spins up a bridge stub that records requests and
// replies with the given body.
func newTestClient(t *testing.T, status int,
	respBody string) (*Client, *capturedRequest) {

	t.Helper()

	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(
				t, "application/json",
				r.Header.Get("Content-Type"),
			)

			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			captured.path = r.URL.Path
			captured.body = nil
			require.NoError(
				t, json.Unmarshal(raw, &captured.body),
			)

			w.WriteHeader(status)
			_, _ = w.Write([]byte(respBody))
		},
	))
	t.Cleanup(server.Close)

	cfg := DefaultConfig(server.URL)
	cfg.RetryAttempts = 0
	cfg.RetryDelay = time.Millisecond

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client, captured
}

// TestClientConfigValidation rejects missing configuration.
func TestClientConfigValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(nil)
	require.Error(t, err)

	_, err = NewClient(&Config{})
	require.Error(t, err)
}

// TestClientSparseConfigDefaults verifies a hand-built config with only
// the base URL set still yields a working client: the unset rate limit
// must not produce a limiter that blocks every request.
func TestClientSparseConfigDefaults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"txid": "ok"}`))
		},
	))
	t.Cleanup(server.Close)

	cfg := &Config{BaseURL: server.URL}
	client, err := NewClient(cfg)
	require.NoError(t, err)

	require.Equal(t, 10, cfg.RateLimit)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, time.Second, cfg.RetryDelay)

	res, err := client.SendOnchain(
		context.Background(), "bc1qaddress", 1000, "",
	)
	require.NoError(t, err)
	require.Equal(t, "ok", res.TxID)
}

// TestSendOnchain posts to the onchain endpoint and decodes the txid.
func TestSendOnchain(t *testing.T) {
	t.Parallel()

	client, captured := newTestClient(
		t, http.StatusOK, `{"txid": "deadbeef"}`,
	)

	res, err := client.SendOnchain(
		context.Background(), "bc1qaddress", 1000, "rent",
	)
	require.NoError(t, err)
	require.Equal(t, "deadbeef", res.TxID)

	require.Equal(t, "/v1/send/onchain", captured.path)
	require.Equal(t, "bc1qaddress", captured.body["destination"])
	require.Equal(t, float64(1000), captured.body["amountSat"])
	require.Equal(t, "rent", captured.body["comment"])
}

// TestPayBolt11 covers both the amount-carrying and the invoice-fixed
// request shapes.
func TestPayBolt11(t *testing.T) {
	t.Parallel()

	client, captured := newTestClient(
		t, http.StatusOK,
		`{"preimage": "00aa", "amountSat": 2500}`,
	)

	amt := btcutil.Amount(2500)
	res, err := client.PayBolt11(
		context.Background(), "lnbc1invoice", &amt, "",
	)
	require.NoError(t, err)
	require.Equal(t, "00aa", res.Preimage)
	require.Equal(t, btcutil.Amount(2500), res.AmountSat)

	require.Equal(t, "/v1/send/bolt11", captured.path)
	require.Equal(t, float64(2500), captured.body["amountSat"])
	require.NotContains(t, captured.body, "comment")

	// Invoice-fixed payments omit the amount entirely.
	_, err = client.PayBolt11(
		context.Background(), "lnbc1invoice", nil, "",
	)
	require.NoError(t, err)
	require.NotContains(t, captured.body, "amountSat")
}

// TestPayLnurl posts to the lnurl endpoint.
func TestPayLnurl(t *testing.T) {
	t.Parallel()

	client, captured := newTestClient(
		t, http.StatusOK, `{"preimage": "bb11"}`,
	)

	res, err := client.PayLnurl(
		context.Background(), "satoshi@example.com", 700, "hi",
	)
	require.NoError(t, err)
	require.Equal(t, "bb11", res.Preimage)
	require.Equal(t, "/v1/send/lnurl", captured.path)
	require.Equal(
		t, "satoshi@example.com", captured.body["destination"],
	)
}

// TestSendArk posts to the ark endpoint and decodes the ark txid.
func TestSendArk(t *testing.T) {
	t.Parallel()

	client, captured := newTestClient(
		t, http.StatusOK, `{"arkTxid": "arktx01"}`,
	)

	res, err := client.SendArk(
		context.Background(), "02"+"ab", 900, "",
	)
	require.NoError(t, err)
	require.Equal(t, "arktx01", res.TxID)
	require.Equal(t, "/v1/send/ark", captured.path)
}

// TestClientEngineRejection surfaces a non-retryable engine rejection
// as an error.
func TestClientEngineRejection(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(
		t, http.StatusBadRequest, `{"error": "insufficient funds"}`,
	)

	_, err := client.SendOnchain(
		context.Background(), "bc1qaddress", 1000, "",
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient funds")
}

// TestClientRetriesServerErrors retries 5xx responses before
// succeeding.
func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var attempts int
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"txid": "ok"}`))
		},
	))
	t.Cleanup(server.Close)

	cfg := DefaultConfig(server.URL)
	cfg.RetryAttempts = 2
	cfg.RetryDelay = time.Millisecond

	client, err := NewClient(cfg)
	require.NoError(t, err)

	res, err := client.SendOnchain(
		context.Background(), "bc1qaddress", 1000, "",
	)
	require.NoError(t, err)
	require.Equal(t, "ok", res.TxID)
	require.Equal(t, 2, attempts)
}
