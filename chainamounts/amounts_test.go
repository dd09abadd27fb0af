package chainamounts

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"
)

func TestBchToSatoshis_RoundTrip(t *testing.T) {
	amount, _, err := apd.NewFromString("1.23456789")
	require.NoError(t, err)

	sats, err := BchToSatoshis(amount)
	require.NoError(t, err)
	require.Equal(t, Satoshis(123456789), sats)

	back := sats.AsDecimal()
	cmp, err := back.Cmp(amount)
	require.NoError(t, err)
	require.Zero(t, cmp)
}

func TestXmrToPiconero_RoundTrip(t *testing.T) {
	amount, _, err := apd.NewFromString("0.5")
	require.NoError(t, err)

	pico, err := XmrToPiconero(amount)
	require.NoError(t, err)
	require.Equal(t, Piconero(5e11), pico)

	back := pico.AsDecimal()
	cmp, err := back.Cmp(amount)
	require.NoError(t, err)
	require.Zero(t, cmp)
}

func TestXmrToPiconero_RejectsNegative(t *testing.T) {
	amount, _, err := apd.NewFromString("-1")
	require.NoError(t, err)

	_, err = XmrToPiconero(amount)
	require.Error(t, err)
}

func TestFeePerByte_Fee(t *testing.T) {
	f := FeePerByte(2)
	require.Equal(t, Satoshis(400), f.Fee(200))
}
