package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_FlagsOnly(t *testing.T) {
	args := []string{
		"--bch-rpc-url", "http://localhost:8332",
		"--bch-network", "regtest",
		"--xmr-daemon-url", "http://localhost:18081",
		"--xmr-wallet-rpc-url", "http://localhost:18083",
		"--t1-blocks", "144",
		"--t2-blocks", "72",
		"--fee-per-byte-sat", "1",
	}

	opts, err := Parse(args)
	require.NoError(t, err)
	require.Equal(t, Regtest, opts.BchNetwork)
	require.EqualValues(t, 2, opts.ConfirmationsBch)
	require.EqualValues(t, 10, opts.ConfirmationsXmr)
}

func TestParse_RejectsMissingRequired(t *testing.T) {
	_, err := Parse([]string{"--bch-network", "regtest"})
	require.Error(t, err)
}

func TestParse_ConfigFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"bch_rpc_url": "http://localhost:8332",
		"bch_network": "testnet",
		"xmr_daemon_url": "http://localhost:18081",
		"xmr_wallet_rpc_url": "http://localhost:18083",
		"confirmations_bch": 3,
		"confirmations_xmr": 12,
		"t1_blocks": 144,
		"t2_blocks": 72,
		"fee_per_byte_sat": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	opts, err := Parse([]string{"--config", path})
	require.NoError(t, err)
	require.Equal(t, Testnet, opts.BchNetwork)
	require.EqualValues(t, 3, opts.ConfirmationsBch)

	// flags still override the file
	opts, err = Parse([]string{"--config", path, "--confirmations-bch", "5"})
	require.NoError(t, err)
	require.EqualValues(t, 5, opts.ConfirmationsBch)
}
