package destination

import (
	"net/url"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/shopspring/decimal"
)

// satsPerBTC is the shift between the whole-coin amount a BIP21 URI
// carries and the satoshi base unit.
const satsPerBTC = 8

// Method identifies one sub-destination of a unified payload.
type Method uint8

const (
	// MethodOnchain pays the mandatory on-chain address.
	MethodOnchain Method = iota

	// MethodLightning pays the embedded BOLT11 invoice.
	MethodLightning

	// MethodArk pays the embedded Ark identifier.
	MethodArk
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodLightning:
		return "lightning"
	case MethodArk:
		return "ark"
	default:
		return "onchain"
	}
}

// UnifiedPayload is the structured form of a unified multi-method URI:
// a mandatory on-chain address plus optional alternative-rail
// sub-destinations and an optional fixed amount scoped to the whole
// payload.
type UnifiedPayload struct {
	// OnchainAddress is the mandatory base-rail address. It always
	// passes the on-chain validator; a payload with an invalid
	// address is never constructed.
	OnchainAddress string

	// ArkID is the optional embedded Ark identifier.
	ArkID string

	// Invoice is the optional embedded BOLT11 invoice.
	Invoice string
}

// Methods lists the available sub-destinations in preference order.
func (p *UnifiedPayload) Methods() []Method {
	methods := make([]Method, 0, 3)
	if p.ArkID != "" {
		methods = append(methods, MethodArk)
	}
	if p.Invoice != "" {
		methods = append(methods, MethodLightning)
	}
	return append(methods, MethodOnchain)
}

// DefaultMethod picks the sub-destination used when the user expresses
// no preference. Policy: the Ark rail is the cheapest when available,
// then the invoice rail, then on-chain.
func (p *UnifiedPayload) DefaultMethod() Method {
	if p.ArkID != "" {
		return MethodArk
	}
	if p.Invoice != "" {
		return MethodLightning
	}
	return MethodOnchain
}

// resolveUnified parses a unified multi-method URI. Any structural
// failure degrades the whole classification to Unrecognized; a partial
// or guessed payload is never returned.
func resolveUnified(uri string, params *chaincfg.Params) Classification {
	u, err := url.Parse(uri)
	if err != nil || !strings.EqualFold(u.Scheme, "bitcoin") {
		return unrecognized("malformed payment URI")
	}

	// The canonical bitcoin:addr form parses as Opaque; the tolerated
	// bitcoin://addr form puts the address in Host instead.
	addr := u.Opaque
	if addr == "" {
		addr = u.Host
	}
	if addr == "" {
		addr = strings.TrimPrefix(u.Path, "/")
	}
	if !IsOnchainAddress(addr, params) {
		return unrecognized("payment URI carries an invalid " +
			"on-chain address")
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return unrecognized("malformed payment URI query")
	}

	payload := &UnifiedPayload{OnchainAddress: addr}

	// Unknown query keys are ignored; recognized ones must validate.
	if v := query.Get("ark"); v != "" {
		if !IsArkPublicKey(v) && !isArkAddress(v, params) {
			return unrecognized("payment URI carries an " +
				"invalid ark identifier")
		}
		payload.ArkID = v
	}

	if v := query.Get("lightning"); v != "" {
		if !IsLightningInvoice(v, params) {
			return unrecognized("payment URI carries an " +
				"invalid lightning invoice")
		}
		payload.Invoice = v
	}

	c := Classification{
		Kind:           KindUnified,
		Destination:    addr,
		AmountEditable: true,
		Unified:        payload,
	}

	if v := query.Get("amount"); v != "" {
		amt, ok := parseBTCAmount(v)
		if !ok {
			return unrecognized("payment URI carries an " +
				"invalid amount")
		}
		c.Amount = amt
		c.HasAmount = true
		c.AmountEditable = false
	}

	return c
}

// parseBTCAmount converts a whole-coin decimal string into satoshis.
// The value must be positive and representable in whole satoshis.
func parseBTCAmount(s string) (btcutil.Amount, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}

	sats := d.Shift(satsPerBTC)
	if sats.Sign() <= 0 || !sats.IsInteger() {
		return 0, false
	}

	if !sats.BigInt().IsInt64() {
		return 0, false
	}
	return btcutil.Amount(sats.IntPart()), true
}
