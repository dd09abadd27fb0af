package ves

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
)

func digest(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

func TestEncryptDecryptRecover(t *testing.T) {
	sk, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	pk := sk.Point()

	tSecret, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	tPoint := tSecret.Point()

	msg := digest("claim tx sighash")

	presig, err := EncryptSign(sk, msg, tPoint)
	require.NoError(t, err)

	require.NoError(t, VerifyEncrypted(pk, msg, tPoint, presig))

	sig := DecryptSig(presig, tSecret)
	require.NoError(t, VerifySignature(pk, msg, sig))

	recovered, err := RecoverSecret(presig, sig)
	require.NoError(t, err)
	require.True(t, recovered.Equal(tSecret))
}

func TestVerifyEncrypted_WrongMessage(t *testing.T) {
	sk, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	pk := sk.Point()

	tSecret, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	tPoint := tSecret.Point()

	presig, err := EncryptSign(sk, digest("message a"), tPoint)
	require.NoError(t, err)

	err = VerifyEncrypted(pk, digest("message b"), tPoint, presig)
	require.Error(t, err)
}

func TestRecoverSecret_UnrelatedSignature(t *testing.T) {
	sk, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	pk := sk.Point()

	tSecret, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	tPoint := tSecret.Point()

	msg := digest("claim tx sighash")
	presig, err := EncryptSign(sk, msg, tPoint)
	require.NoError(t, err)

	otherSk, err := secp256k1.NewRandomScalar()
	require.NoError(t, err)
	otherPresig, err := EncryptSign(otherSk, msg, tPoint)
	require.NoError(t, err)
	otherSig := DecryptSig(otherPresig, tSecret)

	_, err = RecoverSecret(presig, otherSig)
	require.Error(t, err)
	_ = pk
}
