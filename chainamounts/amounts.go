// Package chainamounts defines the fixed-point amount types for both legs
// of a swap and the exact-decimal arithmetic used to display and compare
// them, generalizing the single MoneroAmount/EtherAmount pair the teacher
// used for a one-chain-is-always-ether protocol into two integer
// denominations, neither of which is ether.
package chainamounts

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

const (
	numSatoshiUnits  = 1e8
	numPiconeroUnits = 1e12
)

// Satoshis is an amount of bitcoin cash in its smallest denomination.
type Satoshis int64

// Piconero is an amount of monero in its smallest denomination.
type Piconero uint64

// BchToSatoshis converts a decimal BCH amount to Satoshis.
func BchToSatoshis(amount *apd.Decimal) (Satoshis, error) {
	scaled := new(apd.Decimal)
	ctx := apd.BaseContext.WithPrecision(40)
	if _, err := ctx.Mul(scaled, amount, apd.New(numSatoshiUnits, 0)); err != nil {
		return 0, fmt.Errorf("failed to scale bch amount: %w", err)
	}

	i, err := scaled.Int64()
	if err != nil {
		return 0, fmt.Errorf("bch amount out of range: %w", err)
	}

	return Satoshis(i), nil
}

// AsDecimal converts Satoshis to a decimal BCH amount.
func (s Satoshis) AsDecimal() *apd.Decimal {
	d := apd.New(int64(s), 0)
	out := new(apd.Decimal)
	ctx := apd.BaseContext.WithPrecision(40)
	_, _ = ctx.Quo(out, d, apd.New(numSatoshiUnits, 0))
	return out
}

// XmrToPiconero converts a decimal XMR amount to Piconero.
func XmrToPiconero(amount *apd.Decimal) (Piconero, error) {
	scaled := new(apd.Decimal)
	ctx := apd.BaseContext.WithPrecision(40)
	if _, err := ctx.Mul(scaled, amount, apd.New(numPiconeroUnits, 0)); err != nil {
		return 0, fmt.Errorf("failed to scale xmr amount: %w", err)
	}

	i, err := scaled.Int64()
	if err != nil || i < 0 {
		return 0, fmt.Errorf("xmr amount out of range")
	}

	return Piconero(i), nil
}

// AsDecimal converts Piconero to a decimal XMR amount.
func (p Piconero) AsDecimal() *apd.Decimal {
	d := apd.New(int64(p), 0) //nolint:gosec
	out := new(apd.Decimal)
	ctx := apd.BaseContext.WithPrecision(40)
	_, _ = ctx.Quo(out, d, apd.New(numPiconeroUnits, 0))
	return out
}

// FeePerByte is the fixed satoshi-per-byte fee floor; spec.md explicitly
// excludes fee-market sophistication, so this is a flat configuration
// constant with no bumping policy.
type FeePerByte Satoshis

// Fee returns the fee for a transaction of the given virtual size.
func (f FeePerByte) Fee(vsize int64) Satoshis {
	return Satoshis(int64(f) * vsize)
}
