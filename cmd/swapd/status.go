package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
)

// Exit codes per spec.md §6.
const (
	exitSuccess           = 0
	exitProtocolViolation = 2
	exitOracleUnavailable = 3
	exitJournalCorruption = 4
	exitCancelled         = 5
)

// exitCode maps a terminal swap error to spec.md's exit code table. A nil
// err is success; an error with no matching Kind falls back to a generic
// protocol violation, since anything reaching main unclassified is itself
// a protocol-handling defect worth flagging loudly.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	switch {
	case swaperrors.Is(err, swaperrors.KindOracleUnavailable):
		return exitOracleUnavailable
	case swaperrors.Is(err, swaperrors.KindJournalCorruption):
		return exitJournalCorruption
	case swaperrors.Is(err, swaperrors.KindCancelled):
		return exitCancelled
	default:
		return exitProtocolViolation
	}
}

func printSuccess(tradeID string) {
	str := color.New(color.Bold).Sprintf("** swap completed successfully! trade=%s **", tradeID)
	fmt.Println(str)
}

func printRefunded(tradeID string) {
	str := color.New(color.Bold).Sprintf("** swap refunded: trade=%s **", tradeID)
	fmt.Println(str)
}

func printFailure(tradeID string, err error) {
	str := color.New(color.FgRed, color.Bold).Sprintf("** swap failed: trade=%s: %s **", tradeID, err)
	fmt.Println(str)
}
