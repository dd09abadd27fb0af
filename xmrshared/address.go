package xmrshared

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
)

// moneroAlphabet is Monero's base58 alphabet (Bitcoin's, same ordering).
const moneroAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// moneroEncodedBlockSizes maps each full-block byte count to its encoded length;
// Monero's base58 variant encodes in fixed 8-byte blocks (11 b58 chars)
// except for a final, possibly shorter tail block.
var moneroEncodedBlockSizes = [9]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

const mainnetPrefix = 18   // standard Monero mainnet address prefix
const stagenetPrefix = 24  // standard Monero stagenet address prefix

// sharedAddress encodes the two-party shared spend/view public keys into a
// standard Monero address string for the given network, following the
// network-byte + keys + 4-byte Keccak checksum + block-wise base58 layout
// every Monero address uses.
func sharedAddress(spendPub *ed25519ext.Point, viewKey *ed25519ext.Scalar, network Network) (string, error) {
	prefix := byte(mainnetPrefix)
	if network == Stagenet {
		prefix = stagenetPrefix
	}

	spend := spendPub.Bytes()
	viewPub := viewKey.Point().Bytes()

	payload := make([]byte, 0, 1+32+32+4)
	payload = append(payload, prefix)
	payload = append(payload, spend[:]...)
	payload = append(payload, viewPub[:]...)

	checksum := keccakChecksum(payload)
	payload = append(payload, checksum[:4]...)

	return base58MoneroEncode(payload), nil
}

func keccakChecksum(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// base58MoneroEncode implements Monero's block-wise base58 variant: input
// is split into 8-byte blocks (the final block may be shorter), each
// encoded independently and zero-padded on the left to its fixed output
// width from moneroEncodedBlockSizes, then concatenated.
func base58MoneroEncode(data []byte) string {
	var out []byte
	for len(data) > 0 {
		n := 8
		if len(data) < 8 {
			n = len(data)
		}
		out = append(out, encodeBlock(data[:n])...)
		data = data[n:]
	}
	return string(out)
}

func encodeBlock(block []byte) []byte {
	width := moneroEncodedBlockSizes[len(block)]

	var num [8]byte
	copy(num[8-len(block):], block)
	n := binary.BigEndian.Uint64(num[:])

	enc := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		enc[i] = moneroAlphabet[n%58]
		n /= 58
	}
	return enc
}

func init() {
	if len(moneroAlphabet) != 58 {
		panic(fmt.Sprintf("monero alphabet has %d symbols, want 58", len(moneroAlphabet)))
	}
}
