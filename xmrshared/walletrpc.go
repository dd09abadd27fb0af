package xmrshared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
)

// WalletRPC is a monero-wallet-rpc-backed WalletOracle, adapted from the
// teacher's monero.Client: the same endpoint-plus-JSON-RPC-call shape, but
// wired directly against net/http/encoding/json instead of an
// uncarried internal rpctypes helper.
type WalletRPC struct {
	endpoint string
	client   *http.Client
}

// NewWalletRPC returns a client for the monero-wallet-rpc JSON-RPC
// endpoint (e.g. http://127.0.0.1:18083/json_rpc).
func NewWalletRPC(endpoint string) *WalletRPC {
	return &WalletRPC{endpoint: endpoint, client: http.DefaultClient}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("monero-wallet-rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (w *WalletRPC) call(method string, params, result interface{}) error {
	req := rpcRequest{JSONRPC: "2.0", ID: "0", Method: method, Params: params}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	resp, err := w.client.Post(w.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return nil
}

// GenerateViewOnlyWallet implements WalletOracle via the generate_from_keys
// RPC call without a spend key, matching the teacher's
// GenerateViewOnlyWalletFromKeys(vk, address, filename, password) split.
func (w *WalletRPC) GenerateViewOnlyWallet(spendPub *ed25519ext.Point, viewKey *ed25519ext.Scalar, filename, password string, network Network) error {
	addr, err := sharedAddress(spendPub, viewKey, network)
	if err != nil {
		return err
	}

	params := map[string]interface{}{
		"filename":         filename,
		"address":          addr,
		"viewkey":          hexScalar(viewKey),
		"password":         password,
		"autosave_current": true,
	}
	return w.call("generate_from_keys", params, nil)
}

// GenerateSpendWallet opens a full spending wallet once fullSpend (the
// reconstructed sum of both parties' spend scalars) is known.
func (w *WalletRPC) GenerateSpendWallet(spendKey, viewKey *ed25519ext.Scalar, filename, password string, network Network) error {
	spendPub := spendKey.Point()
	addr, err := sharedAddress(spendPub, viewKey, network)
	if err != nil {
		return err
	}

	params := map[string]interface{}{
		"filename":         filename,
		"address":          addr,
		"spendkey":         hexScalar(spendKey),
		"viewkey":          hexScalar(viewKey),
		"password":         password,
		"autosave_current": true,
	}
	return w.call("generate_from_keys", params, nil)
}

type balanceResult struct {
	Balance         uint64 `json:"balance"`
	UnlockedBalance uint64 `json:"unlocked_balance"`
}

func (w *WalletRPC) GetBalance(accountIdx uint) (total, unlocked uint64, err error) {
	var res balanceResult
	params := map[string]interface{}{"account_index": accountIdx}
	if err := w.call("get_balance", params, &res); err != nil {
		return 0, 0, err
	}
	return res.Balance, res.UnlockedBalance, nil
}

type heightResult struct {
	Height uint64 `json:"height"`
}

func (w *WalletRPC) GetHeight() (uint64, error) {
	var res heightResult
	if err := w.call("get_height", nil, &res); err != nil {
		return 0, err
	}
	return res.Height, nil
}

type sweepAllResult struct {
	TxHashList []string `json:"tx_hash_list"`
}

func (w *WalletRPC) SweepAll(to string, accountIdx uint) ([]string, error) {
	var res sweepAllResult
	params := map[string]interface{}{
		"address":       to,
		"account_index": accountIdx,
	}
	if err := w.call("sweep_all", params, &res); err != nil {
		return nil, err
	}
	return res.TxHashList, nil
}

func (w *WalletRPC) Refresh() error {
	return w.call("refresh", map[string]interface{}{}, nil)
}

func hexScalar(s *ed25519ext.Scalar) string {
	b := s.Bytes()
	return fmt.Sprintf("%x", b)
}
