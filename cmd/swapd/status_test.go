package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
)

func TestExitCode_Success(t *testing.T) {
	require.Equal(t, exitSuccess, exitCode(nil))
}

func TestExitCode_MapsKnownKinds(t *testing.T) {
	require.Equal(t, exitOracleUnavailable, exitCode(swaperrors.OracleUnavailable("rpc down")))
	require.Equal(t, exitJournalCorruption, exitCode(swaperrors.JournalCorruption("hash mismatch")))
	require.Equal(t, exitCancelled, exitCode(swaperrors.New(swaperrors.KindCancelled, nil)))
	require.Equal(t, exitProtocolViolation, exitCode(swaperrors.ProtocolViolation("bad dleq")))
}

func TestExitCode_UnclassifiedErrorFallsBackToProtocolViolation(t *testing.T) {
	require.Equal(t, exitProtocolViolation, exitCode(errors.New("some plain error")))
}
