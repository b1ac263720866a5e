// Package destination classifies raw user input (pasted, scanned or
// typed) into exactly one payment rail and extracts the constraints the
// rail imposes on the send flow: a fixed amount, whether the amount
// field stays editable, and any non-blocking validation warning.
//
// Classification is a pure function of the input string and the active
// network. It never panics and never returns an error: input that
// matches no rail classifies as Unrecognized.
package destination

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

// minSpendableMsat is the smallest invoice amount the engine can
// dispatch: one satoshi. Invoices below it are technically valid but
// economically unpayable, so they classify as amount-editable with a
// warning instead of carrying their sub-satoshi amount forward.
const minSpendableMsat = lnwire.MilliSatoshi(1000)

// Kind tags the rail a destination was classified into.
type Kind uint8

const (
	// KindUnrecognized means the input matched no known rail.
	KindUnrecognized Kind = iota

	// KindOnchain is a plain on-chain address.
	KindOnchain

	// KindLightningInvoice is a BOLT11 invoice.
	KindLightningInvoice

	// KindLightningAddress is a user@domain lightning address.
	KindLightningAddress

	// KindArk is an Ark public key or Ark address.
	KindArk

	// KindUnified is a BIP21-style URI carrying an on-chain address
	// plus optional alternative-rail sub-destinations.
	KindUnified
)

// String returns a human-readable rail name.
func (k Kind) String() string {
	switch k {
	case KindOnchain:
		return "onchain"
	case KindLightningInvoice:
		return "lightning-invoice"
	case KindLightningAddress:
		return "lightning-address"
	case KindArk:
		return "ark"
	case KindUnified:
		return "unified"
	default:
		return "unrecognized"
	}
}

// Classification is the result of classifying a raw destination
// string. At most one rail is assigned per input; unified URIs carry
// their sub-destinations in Unified.
type Classification struct {
	// Kind is the assigned rail.
	Kind Kind

	// Destination is the cleaned destination string for the rail:
	// the address, invoice, lightning address or ark identifier with
	// any URI scheme prefix stripped.
	Destination string

	// Amount is the fixed amount embedded in the source format, in
	// satoshis. Only meaningful when HasAmount is true.
	Amount btcutil.Amount

	// HasAmount reports whether the format embeds a spendable amount.
	HasAmount bool

	// AmountEditable reports whether the user may still edit the
	// amount. False whenever the format embeds a nonzero, spendable
	// amount.
	AmountEditable bool

	// Warning carries a non-blocking note for values that parse but
	// are economically marginal, such as a sub-satoshi invoice.
	Warning string

	// Unified holds the multi-method payload for KindUnified.
	Unified *UnifiedPayload

	// Note explains why an input classified as Unrecognized.
	Note string
}

// unrecognized builds an Unrecognized classification with a reason.
func unrecognized(note string) Classification {
	return Classification{
		Kind: KindUnrecognized,
		Note: note,
	}
}

// Classify assigns exactly one rail to a raw destination string. The
// checks run in a fixed order because the formats overlap in
// superficial shape; the first match wins:
//
//  1. A bitcoin: URI with a query string is a unified multi-method
//     container and short-circuits everything else.
//  2. Lightning address.
//  3. BOLT11 invoice, extracting the embedded amount when spendable.
//  4. On-chain address for the configured network.
//  5. Ark public key or Ark address.
//  6. Unrecognized.
func Classify(input string, params *chaincfg.Params) Classification {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return unrecognized("empty destination")
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "bitcoin:") &&
		strings.Contains(trimmed, "?") {

		return resolveUnified(trimmed, params)
	}

	cleaned := stripSchemePrefix(trimmed)
	if cleaned == "" {
		return unrecognized("empty destination")
	}

	if IsLightningAddress(cleaned) {
		return Classification{
			Kind:           KindLightningAddress,
			Destination:    cleaned,
			AmountEditable: true,
		}
	}

	if invoice, err := decodeInvoice(cleaned, params); err == nil {
		return classifyInvoice(cleaned, invoice)
	}

	if IsOnchainAddress(cleaned, params) {
		return Classification{
			Kind:           KindOnchain,
			Destination:    cleaned,
			AmountEditable: true,
		}
	}

	if IsArkPublicKey(cleaned) || isArkAddress(cleaned, params) {
		return Classification{
			Kind:           KindArk,
			Destination:    cleaned,
			AmountEditable: true,
		}
	}

	return unrecognized("unrecognized payment destination")
}

// classifyInvoice maps a decoded BOLT11 invoice onto a classification,
// applying the minimum-spendable-amount policy.
func classifyInvoice(raw string, invoice *zpay32.Invoice) Classification {
	c := Classification{
		Kind:        KindLightningInvoice,
		Destination: raw,
	}

	var msat lnwire.MilliSatoshi
	if invoice.MilliSat != nil {
		msat = *invoice.MilliSat
	}
	switch {
	case msat == 0:
		c.AmountEditable = true

	case msat < minSpendableMsat:
		c.AmountEditable = true
		c.Warning = "invoice amount is below 1 satoshi and " +
			"cannot be paid as encoded; enter an amount instead"

	default:
		c.Amount = msat.ToSatoshis()
		c.HasAmount = true
	}

	return c
}

// stripSchemePrefix removes a known URI scheme prefix,
// case-insensitively, before any format check runs.
func stripSchemePrefix(s string) string {
	lower := strings.ToLower(s)
	for _, scheme := range []string{
		"lightning://", "lightning:", "bitcoin://", "bitcoin:",
		"ark://", "ark:",
	} {
		if strings.HasPrefix(lower, scheme) {
			return s[len(scheme):]
		}
	}
	return s
}
