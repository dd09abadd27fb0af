// Command swapd drives one side of a single BCH/XMR swap trade from the
// command line, mirroring the teacher's cmd/daemon entrypoint shape:
// parse flags, install a cancellable root context and signal handler,
// create an Alice-role trade and send M1, then wait until interrupted and
// exit with the code spec.md §6 assigns to the outcome. It does not drive
// the trade past M1, so a run ends as Cancelled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Cyrix126/bch-xmr-swap/bchcovenant"
	"github.com/Cyrix126/bch-xmr-swap/chainoracle"
	"github.com/Cyrix126/bch-xmr-swap/config"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
	"github.com/Cyrix126/bch-xmr-swap/fsm"
	"github.com/Cyrix126/bch-xmr-swap/journal"
	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
	"github.com/Cyrix126/bch-xmr-swap/trade"
)

var log = logging.Logger("swapd")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitProtocolViolation
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	logging.SetLogLevel("*", level) //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	d := &daemon{ctx: ctx, cancel: cancel}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received interrupt, shutting down")
		d.cancel()
	}()

	tradeID, err := runTrade(d.ctx, opts)
	code := exitCode(err)

	switch {
	case err == nil:
		printSuccess(tradeID)
	case swaperrors.Is(err, swaperrors.KindCancelled):
		printRefunded(tradeID)
	default:
		printFailure(tradeID, err)
	}

	return code
}

// runTrade constructs a fresh Alice-role trade and drives its FSM's
// pre-commit setup. The oracle is a chainoracle.Mock here: per spec.md's
// "Out of scope" list, real BCH/XMR RPC clients are pluggable
// implementations of chainoracle.Interface supplied by the operator, not
// part of this module.
func runTrade(ctx context.Context, opts *config.Options) (string, error) {
	own, err := newKeyMaterial()
	if err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}

	amounts := trade.Amounts{} // negotiated out of band before M1; zero here is a placeholder for wiring
	timelocks := trade.Timelocks{T1Blocks: opts.T1Blocks, T2Blocks: opts.T2Blocks}

	t, err := trade.New(trade.RoleAlice, amounts, timelocks, own)
	if err != nil {
		return "", err
	}

	oracle := chainoracle.Interface{Bch: chainoracle.NewMock(), Xmr: chainoracle.NewMock()}
	layout := journal.Layout{Root: opts.JournalDir}

	network := bchNetwork(opts.BchNetwork)
	m, err := fsm.NewAliceMachine(t, layout, oracle, network, fsm.DefaultConfig())
	if err != nil {
		return string(t.ID), err
	}
	defer m.Close()

	if _, err := m.SendM1(); err != nil {
		return string(t.ID), err
	}

	log.Infof("trade %s: waiting for counterparty over the configured transport", t.ID)
	<-ctx.Done()
	return string(t.ID), swaperrors.Newf(swaperrors.KindCancelled, "interrupted before completion")
}

func bchNetwork(n config.Network) bchcovenant.Network {
	switch n {
	case config.Mainnet:
		return bchcovenant.Mainnet
	case config.Testnet:
		return bchcovenant.Testnet3
	default:
		return bchcovenant.Regtest
	}
}

func newKeyMaterial() (*trade.KeyMaterial, error) {
	spendSecp, err := secp256k1.NewRandomScalar()
	if err != nil {
		return nil, err
	}
	spendSecpBytes := spendSecp.Bytes()
	spendEd := ed25519ext.ScalarFromSecp256k1Bytes(spendSecpBytes)

	viewShare, err := ed25519ext.NewRandomScalar()
	if err != nil {
		return nil, err
	}
	refundKey, err := secp256k1.NewRandomScalar()
	if err != nil {
		return nil, err
	}
	claimKey, err := secp256k1.NewRandomScalar()
	if err != nil {
		return nil, err
	}

	return &trade.KeyMaterial{
		SpendSecp: spendSecp,
		SpendEd:   spendEd,
		ViewShare: viewShare,
		RefundKey: refundKey,
		ClaimKey:  claimKey,
	}, nil
}
