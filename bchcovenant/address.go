package bchcovenant

import (
	"crypto/sha256"

	"github.com/gcash/bchutil"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for P2SH hash160, matches bchd's own usage
)

func hashScript(script []byte) TemplateHash {
	return sha256.Sum256(script)
}

// hash160 is SHA256 followed by RIPEMD160, the standard P2SH scripthash.
func hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	r := ripemd160.New()
	r.Write(sha[:])
	return r.Sum(nil)
}

// P2SHAddress derives the cashaddr P2SH address for a given redeem script.
func P2SHAddress(script []byte, network Network) (string, error) {
	addr, err := bchutil.NewAddressScriptHash(script, network.Params())
	if err != nil {
		return "", err
	}

	return addr.EncodeAddress(), nil
}
