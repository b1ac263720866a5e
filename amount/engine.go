// Package amount maintains the user-facing amount of a send attempt in
// a chosen display unit and converts it to the satoshi base unit the
// wallet engine dispatches in.
package amount

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BlixtWallet/noah-sub000/rates"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
)

// satsPerBTC is the decimal shift between whole coins and satoshis.
const satsPerBTC = 8

// fiatDisplayPlaces is the number of decimal places rendered in fiat
// mode.
const fiatDisplayPlaces = 2

// ErrInvalidAmount is returned when the entered amount does not parse
// to a positive whole number of satoshis.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrRateUnavailable is returned when a fiat amount cannot be
// converted because no exchange rate has been delivered yet.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Unit is the display unit of the amount field.
type Unit uint8

const (
	// UnitSat displays the amount in satoshis.
	UnitSat Unit = iota

	// UnitFiat displays the fiat equivalent at the current rate.
	UnitFiat
)

// String returns the unit name.
func (u Unit) String() string {
	if u == UnitFiat {
		return "fiat"
	}
	return "sat"
}

// Engine tracks the amount text the user sees and the satoshi value it
// stands for. When the active classification fixes an amount, the
// engine ignores display edits entirely and always reports the fixed
// value.
//
// Not safe for concurrent use; one engine belongs to one send attempt
// driven from a single goroutine.
type Engine struct {
	rates rates.Source

	unit    Unit
	rawText string

	// base is the satoshi value re-derived from the last accepted
	// display text. Unit toggles convert from base, never by
	// re-parsing already-rounded display text twice.
	base btcutil.Amount

	fixed    btcutil.Amount
	hasFixed bool
}

// NewEngine creates an engine displaying satoshis with no amount set.
func NewEngine(src rates.Source) *Engine {
	return &Engine{rates: src}
}

// Unit returns the current display unit.
func (e *Engine) Unit() Unit {
	return e.unit
}

// DisplayText returns the text currently shown in the amount field.
// For a fixed amount the rendered fixed value is returned, regardless
// of any edits the caller attempted.
func (e *Engine) DisplayText() string {
	if e.hasFixed {
		return e.render(e.fixed)
	}
	return e.rawText
}

// SetDisplayText replaces the amount text and re-derives the base
// value from it. Edits are ignored entirely while a fixed amount is
// set; the caller renders the field read-only in that case.
func (e *Engine) SetDisplayText(text string) {
	if e.hasFixed {
		return
	}

	e.rawText = strings.TrimSpace(text)
	e.base = e.parseBase(e.rawText)
}

// ToggleUnit switches the display unit, converting the current base
// value once at the rate snapshot taken now. Repeated toggling under a
// changing rate accumulates rounding drift; that is accepted and not
// corrected afterwards.
func (e *Engine) ToggleUnit() {
	if e.unit == UnitSat {
		e.unit = UnitFiat
	} else {
		e.unit = UnitSat
	}

	if e.hasFixed {
		return
	}

	amt := e.base
	if amt <= 0 {
		// Nothing to convert; show an empty field in the new unit.
		e.rawText = ""
		return
	}
	e.rawText = e.render(amt)

	// Fiat rendering rounds; the next parse must not compound the
	// rounding, so base is re-derived from the rendered text only
	// when it still parses, and kept otherwise.
	if parsed := e.parseBase(e.rawText); parsed > 0 {
		e.base = parsed
	}
}

// AmountSat returns the satoshi amount to dispatch. A fixed amount
// always wins. Otherwise the value must be a positive whole number of
// satoshis; anything else is a validation error, never a panic.
func (e *Engine) AmountSat() (btcutil.Amount, error) {
	if e.hasFixed {
		return e.fixed, nil
	}

	if e.rawText == "" {
		return 0, fmt.Errorf("%w: no amount entered",
			ErrInvalidAmount)
	}

	if e.unit == UnitFiat {
		if _, ok := e.rates.Rate(); !ok {
			return 0, ErrRateUnavailable
		}
	}

	amt := e.parseBase(e.rawText)
	if amt <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, e.rawText)
	}
	return amt, nil
}

// SetFixed locks the amount to a format-supplied value.
func (e *Engine) SetFixed(amt btcutil.Amount) {
	e.fixed = amt
	e.hasFixed = true
}

// ClearFixed removes the lock, making the field editable again.
func (e *Engine) ClearFixed() {
	e.fixed = 0
	e.hasFixed = false
}

// Fixed returns the locked amount, if any.
func (e *Engine) Fixed() (btcutil.Amount, bool) {
	return e.fixed, e.hasFixed
}

// Reset clears the amount state back to an empty satoshi field.
func (e *Engine) Reset() {
	e.unit = UnitSat
	e.rawText = ""
	e.base = 0
	e.fixed = 0
	e.hasFixed = false
}

// parseBase converts display text in the current unit into satoshis.
// Returns 0 for anything that does not parse to a positive value, or
// when a fiat conversion has no rate yet.
func (e *Engine) parseBase(text string) btcutil.Amount {
	if text == "" {
		return 0
	}

	if e.unit == UnitSat {
		sats, err := strconv.ParseInt(text, 10, 64)
		if err != nil || sats <= 0 {
			return 0
		}
		return btcutil.Amount(sats)
	}

	rate, ok := e.rates.Rate()
	if !ok {
		return 0
	}

	fiat, err := decimal.NewFromString(text)
	if err != nil || fiat.Sign() <= 0 {
		return 0
	}

	sats := fiat.Div(rate).Shift(satsPerBTC).Round(0)
	if sats.Sign() <= 0 || !sats.BigInt().IsInt64() {
		return 0
	}
	return btcutil.Amount(sats.IntPart())
}

// render formats a satoshi amount in the current display unit. Fiat
// rendering shows a zero state while no rate is available; the
// conversion is deferred, not guessed.
func (e *Engine) render(amt btcutil.Amount) string {
	if e.unit == UnitSat {
		return strconv.FormatInt(int64(amt), 10)
	}

	rate, ok := e.rates.Rate()
	if !ok {
		return ""
	}

	fiat := decimal.NewFromInt(int64(amt)).
		Shift(-satsPerBTC).
		Mul(rate)
	return fiat.StringFixed(fiatDisplayPlaces)
}
