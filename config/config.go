// Package config carries the Oracle config fields spec.md §6 names, loaded
// from CLI flags or a JSON override file, mirroring the teacher's
// common environment-constant style (common.Development,
// common.DefaultMoneroDaemonEndpoint) but collected into one validated
// struct instead of scattered package vars.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jessevdk/go-flags"
)

// Network names a BCH network mode by string; cmd/swapd's bchNetwork maps
// each value onto the integer-valued bchcovenant.Network (Testnet onto
// Testnet3).
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
)

// Oracle is spec.md §6's Oracle config, the set of options every CLI
// wrapper must expose.
type Oracle struct {
	BchRPCURL       string  `long:"bch-rpc-url" json:"bch_rpc_url" validate:"required,url"`
	BchNetwork      Network `long:"bch-network" json:"bch_network" validate:"required,oneof=mainnet testnet regtest"`
	XmrDaemonURL    string  `long:"xmr-daemon-url" json:"xmr_daemon_url" validate:"required,url"`
	XmrWalletRPCURL string  `long:"xmr-wallet-rpc-url" json:"xmr_wallet_rpc_url" validate:"required,url"`
	ConfirmationsBch uint32 `long:"confirmations-bch" json:"confirmations_bch" validate:"gt=0"`
	ConfirmationsXmr uint32 `long:"confirmations-xmr" json:"confirmations_xmr" validate:"gt=0"`
	T1Blocks        int64   `long:"t1-blocks" json:"t1_blocks" validate:"gt=0"`
	T2Blocks        int64   `long:"t2-blocks" json:"t2_blocks" validate:"gt=0"`
	FeePerByteSat   int64   `long:"fee-per-byte-sat" json:"fee_per_byte_sat" validate:"gt=0"`
}

// Options is the full CLI flag surface for cmd/swapd, with an optional
// JSON file that overrides defaults before flags are applied on top.
type Options struct {
	Oracle

	ConfigFile string `long:"config" description:"path to a JSON config file, merged before flag overrides"`
	JournalDir string `long:"journal-dir" description:"root directory for trade journals" default:"./data"`
	Verbose    bool   `long:"verbose" short:"v" description:"enable debug logging"`
}

// Default returns spec.md §6's literal default values for the fields it
// names defaults for; the RPC URLs and network carry no sensible default
// and must be supplied.
func Default() Options {
	return Options{
		Oracle: Oracle{
			ConfirmationsBch: 2,
			ConfirmationsXmr: 10,
		},
		JournalDir: "./data",
	}
}

var validate = validator.New()

// Parse reads CLI args into Options, applying a JSON config file (if named)
// before flags so flags always take precedence, then validates the result.
func Parse(args []string) (*Options, error) {
	opts := Default()

	// A first pass just to discover --config without erroring on missing
	// required fields, mirroring the teacher's two-phase flag handling in
	// cmd/daemon (first parse logging/verbosity, then the rest).
	peek := opts
	peekParser := flags.NewParser(&peek, flags.IgnoreUnknown)
	_, _ = peekParser.ParseArgs(args)
	if peek.ConfigFile != "" {
		if err := mergeFile(&opts, peek.ConfigFile); err != nil {
			return nil, err
		}
	}

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &opts, nil
}

func mergeFile(opts *Options, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(b, opts); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
