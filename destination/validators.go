package destination

import (
	"encoding/hex"
	"regexp"
	"strings"

	arklib "github.com/arkade-os/arkd/pkg/ark-lib"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
)

const (
	// arkPubKeyLen is the hex length of a compressed secp256k1 public
	// key identifying an Ark recipient.
	arkPubKeyLen = 66

	// arkHRPMainnet and arkHRPTestnet are the bech32m prefixes used by
	// Ark addresses on mainnet and on the test networks.
	arkHRPMainnet = "ark"
	arkHRPTestnet = "tark"
)

var (
	// lnAddrLocalPart restricts the local part of a lightning address
	// to the character set accepted by common LNURL providers.
	lnAddrLocalPart = regexp.MustCompile(`^[a-z0-9\-_.+]+$`)

	// lnAddrDomainLabel matches a single DNS label.
	lnAddrDomainLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9\-]*[a-z0-9])?$`)
)

// IsOnchainAddress reports whether addr is a valid on-chain address for
// the given network. When the wallet is configured for testnet3, signet
// addresses are also accepted since the two networks share an address
// grammar and coins are routinely moved between test setups.
func IsOnchainAddress(addr string, params *chaincfg.Params) bool {
	if params == nil || addr == "" {
		return false
	}

	decoded, err := btcutil.DecodeAddress(addr, params)
	if err == nil && decoded.IsForNet(params) {
		return true
	}

	if params.Net == chaincfg.TestNet3Params.Net {
		decoded, err := btcutil.DecodeAddress(
			addr, &chaincfg.SigNetParams,
		)
		if err == nil && decoded.IsForNet(&chaincfg.SigNetParams) {
			return true
		}
	}

	return false
}

// IsLightningInvoice reports whether s decodes as a BOLT11 invoice for
// the given network. Any decode error means "not an invoice"; nothing
// is ever propagated.
func IsLightningInvoice(s string, params *chaincfg.Params) bool {
	_, err := decodeInvoice(s, params)
	return err == nil
}

// decodeInvoice decodes a BOLT11 invoice, tolerating the all-uppercase
// form QR codes commonly use.
func decodeInvoice(s string, params *chaincfg.Params) (*zpay32.Invoice,
	error) {

	if s != "" && strings.ToUpper(s) == s {
		s = strings.ToLower(s)
	}
	return zpay32.Decode(s, params)
}

// IsLightningAddress reports whether s has the user@domain shape of a
// lightning address. Addresses hosted on anonymity-network domains are
// rejected as a policy decision: the LNURL fetch for them cannot be
// served by the wallet engine.
func IsLightningAddress(s string) bool {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return false
	}

	local := strings.ToLower(parts[0])
	domain := strings.ToLower(parts[1])
	if local == "" || domain == "" {
		return false
	}

	if !lnAddrLocalPart.MatchString(local) {
		return false
	}

	// Policy, not grammar.
	if domain == "onion" || strings.HasSuffix(domain, ".onion") {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !lnAddrDomainLabel.MatchString(label) {
			return false
		}
	}

	// The TLD must be at least two characters.
	return len(labels[len(labels)-1]) >= 2
}

// IsArkPublicKey reports whether s is a hex-encoded compressed
// secp256k1 public key identifying an Ark recipient. The check is
// independent of the configured network.
func IsArkPublicKey(s string) bool {
	if len(s) != arkPubKeyLen {
		return false
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return false
	}

	if raw[0] != 0x02 && raw[0] != 0x03 {
		return false
	}

	_, err = btcec.ParsePubKey(raw)
	return err == nil
}

// isArkAddress reports whether s is a bech32m Ark address whose prefix
// matches the configured network.
func isArkAddress(s string, params *chaincfg.Params) bool {
	addr, err := arklib.DecodeAddressV0(strings.ToLower(s))
	if err != nil {
		return false
	}

	want := arkHRPTestnet
	if params != nil && params.Net == chaincfg.MainNetParams.Net {
		want = arkHRPMainnet
	}
	return addr.HRP == want
}
