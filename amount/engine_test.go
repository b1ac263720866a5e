package amount

import (
	"testing"

	"github.com/BlixtWallet/noah-sub000/rates"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func snapshotWithRate(rate string) *rates.Snapshot {
	s := rates.NewSnapshot()
	s.Set(decimal.RequireFromString(rate))
	return s
}

// TestEngineSatEntry covers plain satoshi entry and validation.
func TestEngineSatEntry(t *testing.T) {
	t.Parallel()

	e := NewEngine(rates.NewSnapshot())

	e.SetDisplayText("21000")
	amt, err := e.AmountSat()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(21_000), amt)

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "zero", text: "0"},
		{name: "negative", text: "-5"},
		{name: "non-numeric", text: "lots"},
		{name: "decimal in sat mode", text: "1.5"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(rates.NewSnapshot())
			e.SetDisplayText(tc.text)

			_, err := e.AmountSat()
			require.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

// TestEngineFiatEntry converts a fiat amount at the snapshot rate.
func TestEngineFiatEntry(t *testing.T) {
	t.Parallel()

	// 50,000 fiat units per coin: 1 fiat unit buys 2000 sats.
	e := NewEngine(snapshotWithRate("50000"))
	e.ToggleUnit()
	require.Equal(t, UnitFiat, e.Unit())

	e.SetDisplayText("25")
	amt, err := e.AmountSat()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(50_000), amt)
}

// TestEngineFiatWithoutRate defers conversion while no rate has been
// delivered.
func TestEngineFiatWithoutRate(t *testing.T) {
	t.Parallel()

	e := NewEngine(rates.NewSnapshot())
	e.ToggleUnit()

	e.SetDisplayText("25")
	_, err := e.AmountSat()
	require.ErrorIs(t, err, ErrRateUnavailable)
}

// TestEngineToggleRoundTrip toggles twice under a stable rate and
// expects the original value back within rounding tolerance. Exact
// recovery is not guaranteed; drift under a moving rate is accepted.
func TestEngineToggleRoundTrip(t *testing.T) {
	t.Parallel()

	e := NewEngine(snapshotWithRate("63211.37"))
	e.SetDisplayText("123457")

	original, err := e.AmountSat()
	require.NoError(t, err)

	e.ToggleUnit()
	require.Equal(t, UnitFiat, e.Unit())
	require.NotEmpty(t, e.DisplayText())

	e.ToggleUnit()
	require.Equal(t, UnitSat, e.Unit())

	back, err := e.AmountSat()
	require.NoError(t, err)
	require.InDelta(t, int64(original), int64(back), 1000)
}

// TestEngineFixedAmount verifies that a format-fixed amount ignores
// user edits entirely.
func TestEngineFixedAmount(t *testing.T) {
	t.Parallel()

	e := NewEngine(snapshotWithRate("50000"))
	e.SetFixed(7777)

	e.SetDisplayText("123")
	amt, err := e.AmountSat()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(7777), amt)
	require.Equal(t, "7777", e.DisplayText())

	// Toggling still reports the fixed value, rendered in fiat.
	e.ToggleUnit()
	amt, err = e.AmountSat()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(7777), amt)

	e.ClearFixed()
	_, err = e.AmountSat()
	require.Error(t, err)
}

// TestEngineReset returns the engine to an empty satoshi field.
func TestEngineReset(t *testing.T) {
	t.Parallel()

	e := NewEngine(snapshotWithRate("50000"))
	e.SetDisplayText("123")
	e.ToggleUnit()
	e.SetFixed(5)

	e.Reset()
	require.Equal(t, UnitSat, e.Unit())
	require.Empty(t, e.DisplayText())

	_, err := e.AmountSat()
	require.ErrorIs(t, err, ErrInvalidAmount)
}
