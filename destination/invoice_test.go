package destination

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/stretchr/testify/require"
)

var testInvoiceKeyBytes = []byte{
	0x2b, 0xd8, 0x06, 0xc9, 0x7f, 0x0e, 0x00, 0xaf,
	0x1a, 0x1f, 0xc3, 0x32, 0x8f, 0xa7, 0x63, 0xa9,
	0x26, 0x97, 0x23, 0xc8, 0xdb, 0x8f, 0xac, 0x4f,
	0x93, 0xaf, 0x71, 0xdb, 0x18, 0x6d, 0x6e, 0x90,
}

// genInvoice encodes a signed BOLT11 invoice for the given network,
// optionally carrying an amount.
func genInvoice(t *testing.T, params *chaincfg.Params,
	msat *lnwire.MilliSatoshi) string {

	t.Helper()

	privKey, _ := btcec.PrivKeyFromBytes(testInvoiceKeyBytes)

	var payHash [32]byte
	copy(payHash[:], testInvoiceKeyBytes)

	opts := []func(*zpay32.Invoice){
		zpay32.Description("test payment"),
	}
	if msat != nil {
		opts = append(opts, zpay32.Amount(*msat))
	}

	invoice, err := zpay32.NewInvoice(
		params, payHash, time.Unix(1700000000, 0), opts...,
	)
	require.NoError(t, err)

	invoice.Features = lnwire.NewFeatureVector(nil, lnwire.Features)

	encoded, err := invoice.Encode(zpay32.MessageSigner{
		SignCompact: func(msg []byte) ([]byte, error) {
			hash := chainhash.HashB(msg)
			return ecdsa.SignCompact(privKey, hash, true), nil
		},
	})
	require.NoError(t, err)

	return encoded
}

func msatPtr(msat lnwire.MilliSatoshi) *lnwire.MilliSatoshi {
	return &msat
}
