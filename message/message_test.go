package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
)

func validM1() M1 {
	return M1{
		ASpendSecp: make([]byte, 33),
		ASpendEd:   make([]byte, 32),
		AViewEd:    make([]byte, 32),
		RefundPk:   make([]byte, 33),
		ClaimPk:    make([]byte, 33),
		DleqA:      DleqProof{Bytes: make([]byte, 64)},
		Amounts: Amounts{
			BchSatoshis: chainamounts.Satoshis(100000),
			XmrPiconero: chainamounts.Piconero(1000000000000),
		},
		Timelocks: Timelocks{T1Blocks: 144, T2Blocks: 288},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tradeID := "0123456789abcdef0123456789abcdef"[:32]
	m1 := validM1()

	b, err := Encode(tradeID, PhaseM1, m1)
	require.NoError(t, err)

	env, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, PhaseM1, env.Phase)
	require.Equal(t, tradeID, env.TradeID)

	var decoded M1
	require.NoError(t, env.Unmarshal(&decoded))
	require.Equal(t, m1, decoded)
}

func TestDecode_RejectsBadVersion(t *testing.T) {
	b := []byte(`{"v":"not-a-version","trade_id":"0123456789abcdef0123456789abcdef","phase":"M1","body":{}}`)
	_, err := Decode(b)
	require.Error(t, err)
}

func TestDecode_RejectsIncompatibleMajor(t *testing.T) {
	b := []byte(`{"v":"2.0.0","trade_id":"0123456789abcdef0123456789abcdef","phase":"M1","body":{}}`)
	_, err := Decode(b)
	require.Error(t, err)
}

func TestEncode_RejectsInvalidBody(t *testing.T) {
	tradeID := "0123456789abcdef0123456789abcdef"[:32]
	m1 := validM1()
	m1.ASpendSecp = nil // now invalid: required,len=33

	b, err := Encode(tradeID, PhaseM1, m1)
	require.Error(t, err) // Encode itself validates before returning
	require.Nil(t, b)
}
