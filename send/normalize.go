package send

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// normalize maps a rail-specific engine result into the canonical
// record shape. The switch is exhaustive over the four rails; an
// unknown rail or a result of the wrong shape is a programming error
// surfaced as a NormalizationError, never a silently defaulted record.
//
// dispatchAmt is the amount handed to the engine at dispatch time. It
// is used for rails that do not echo an amount back (Ark, lnurl); the
// bolt11 rail reports the engine's own figure.
func normalize(rail Rail, result any, destination string,
	dispatchAmt btcutil.Amount) (*PaymentResultRecord, error) {

	switch rail {
	case RailOnchain:
		res, ok := result.(*OnchainResult)
		if !ok || res == nil {
			return nil, shapeError(rail, result)
		}
		return &PaymentResultRecord{
			Kind:               PaymentKindOnchain,
			AmountSat:          dispatchAmt,
			DestinationDisplay: destination,
			TxID:               res.TxID,
			Success:            true,
		}, nil

	case RailBolt11:
		res, ok := result.(*Bolt11Result)
		if !ok || res == nil {
			return nil, shapeError(rail, result)
		}
		amt := res.AmountSat
		if amt == 0 {
			amt = dispatchAmt
		}
		return &PaymentResultRecord{
			Kind:               PaymentKindBolt11,
			AmountSat:          amt,
			DestinationDisplay: destination,
			Preimage:           res.Preimage,
			Success:            true,
		}, nil

	case RailLnurl:
		res, ok := result.(*LnurlResult)
		if !ok || res == nil {
			return nil, shapeError(rail, result)
		}
		return &PaymentResultRecord{
			Kind:               PaymentKindLnurl,
			AmountSat:          dispatchAmt,
			DestinationDisplay: destination,
			Preimage:           res.Preimage,
			Success:            true,
		}, nil

	case RailArk:
		res, ok := result.(*ArkResult)
		if !ok || res == nil {
			return nil, shapeError(rail, result)
		}
		return &PaymentResultRecord{
			Kind:               PaymentKindArk,
			AmountSat:          dispatchAmt,
			DestinationDisplay: destination,
			TxID:               res.TxID,
			Success:            true,
		}, nil

	default:
		return nil, &NormalizationError{
			Rail:   rail,
			Reason: "unknown rail",
		}
	}
}

func shapeError(rail Rail, result any) *NormalizationError {
	return &NormalizationError{
		Rail:   rail,
		Reason: fmt.Sprintf("unexpected result shape %T", result),
	}
}
