package send

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// Rail identifies the dispatch operation a resolved destination maps
// to.
type Rail uint8

const (
	// RailOnchain is a base-chain send.
	RailOnchain Rail = iota

	// RailBolt11 pays a BOLT11 invoice.
	RailBolt11

	// RailLnurl pays a lightning address via LNURL.
	RailLnurl

	// RailArk is an off-chain Ark send.
	RailArk
)

// String returns the rail name.
func (r Rail) String() string {
	switch r {
	case RailOnchain:
		return "onchain"
	case RailBolt11:
		return "bolt11"
	case RailLnurl:
		return "lnurl"
	case RailArk:
		return "ark"
	default:
		return "unknown"
	}
}

// OnchainResult is the engine's result shape for a base-chain send.
type OnchainResult struct {
	// TxID is the broadcast transaction id.
	TxID string
}

// Bolt11Result is the engine's result shape for an invoice payment.
type Bolt11Result struct {
	// Preimage is the payment proof.
	Preimage string

	// AmountSat is the amount actually paid, echoed by the engine.
	AmountSat btcutil.Amount
}

// LnurlResult is the engine's result shape for a lightning-address
// payment. The amount is not echoed back on this rail.
type LnurlResult struct {
	// Preimage is the payment proof.
	Preimage string
}

// ArkResult is the engine's result shape for an Ark send. The amount
// is not echoed back on this rail.
type ArkResult struct {
	// TxID is the Ark transaction id.
	TxID string
}

// WalletEngine is the external native wallet engine boundary: one
// dispatch operation per rail. The engine owns keys, signing and
// protocol rounds; this subsystem only hands it a resolved destination
// and an amount. The amount pointer is nil only for a fully
// invoice-fixed lightning payment, where the invoice itself carries
// the amount.
type WalletEngine interface {
	SendOnchain(ctx context.Context, address string,
		amount btcutil.Amount, comment string) (*OnchainResult, error)

	PayBolt11(ctx context.Context, invoice string,
		amount *btcutil.Amount, comment string) (*Bolt11Result, error)

	PayLnurl(ctx context.Context, address string,
		amount btcutil.Amount, comment string) (*LnurlResult, error)

	SendArk(ctx context.Context, arkID string,
		amount btcutil.Amount, comment string) (*ArkResult, error)
}

// PaymentKind tags a normalized payment record.
type PaymentKind string

const (
	// PaymentKindOnchain is a base-chain payment record.
	PaymentKindOnchain PaymentKind = "onchain"

	// PaymentKindBolt11 is an invoice payment record.
	PaymentKindBolt11 PaymentKind = "bolt11"

	// PaymentKindLnurl is a lightning-address payment record.
	PaymentKindLnurl PaymentKind = "lnurl"

	// PaymentKindArk is an Ark payment record.
	PaymentKindArk PaymentKind = "ark"
)

// PaymentResultRecord is the canonical, rail-agnostic record of a
// finished send, handed to the transaction-history collaborator for
// durable storage. It is created only on a terminal transition.
type PaymentResultRecord struct {
	// Kind is the rail the payment went over.
	Kind PaymentKind

	// AmountSat is the dispatched amount in satoshis.
	AmountSat btcutil.Amount

	// DestinationDisplay is the destination string shown in history.
	DestinationDisplay string

	// TxID is the transaction id, for rails that produce one.
	TxID string

	// Preimage is the payment proof, for lightning rails.
	Preimage string

	// Success reports whether the payment settled.
	Success bool

	// CreatedAt is when the record was produced.
	CreatedAt time.Time
}

// History is the transaction-history collaborator. It accepts exactly
// one record per successful send.
type History interface {
	Record(ctx context.Context, rec *PaymentResultRecord) error
}
