// Package trade defines the Trade aggregate: identity, role, negotiated
// amounts, key material, and the reference to its current FSM state. It
// plays the role the teacher's common/types package plays for its Offer
// type, adapted to the two-party swap's richer per-trade state.
package trade

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/Cyrix126/bch-xmr-swap/chainamounts"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
)

// IDSize is the byte length of a TradeId before hex encoding.
const IDSize = 16

// ID is a stable, opaque trade identifier, hex-encoded to 32 characters.
type ID string

// NewID draws a fresh random trade id.
func NewID() (ID, error) {
	var b [IDSize]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate trade id: %w", err)
	}

	return ID(hex.EncodeToString(b[:])), nil
}

// Role identifies which side of the swap a Trade instance plays.
type Role int

const (
	RoleAlice Role = iota
	RoleBob
)

func (r Role) String() string {
	if r == RoleAlice {
		return "alice"
	}
	return "bob"
}

// Timelocks carries the negotiated T1/T2 relative-block counts.
type Timelocks struct {
	T1Blocks int64
	T2Blocks int64
}

// KeyMaterial is one party's full secret and public key bundle, per
// spec's "Keypair bundles" data model.
type KeyMaterial struct {
	SpendSecp *secp256k1.Scalar  // linking secret: a_spend or b_spend
	SpendEd   *ed25519ext.Scalar // same scalar, reduced into the ed25519 field
	ViewShare *ed25519ext.Scalar // v_share
	RefundKey *secp256k1.Scalar  // refund_sig_key
	ClaimKey  *secp256k1.Scalar  // claim_sig_key
}

// PublicMaterial is the subset of KeyMaterial a party reveals to its
// counterparty over the wire.
type PublicMaterial struct {
	SpendSecpPub *secp256k1.PublicKey
	SpendEdPub   *ed25519ext.Point
	ViewSharePub *ed25519ext.Point
	RefundPub    *secp256k1.PublicKey
	ClaimPub     *secp256k1.PublicKey
}

// Public derives the counterparty-visible material from a full key bundle.
func (k *KeyMaterial) Public() PublicMaterial {
	return PublicMaterial{
		SpendSecpPub: k.SpendSecp.Point(),
		SpendEdPub:   k.SpendEd.Point(),
		ViewSharePub: k.ViewShare.Point(),
		RefundPub:    k.RefundKey.Point(),
		ClaimPub:     k.ClaimKey.Point(),
	}
}

// Amounts is the negotiated trade size on both chains.
type Amounts struct {
	Bch chainamounts.Satoshis
	Xmr chainamounts.Piconero
}

// Trade is the full per-swap aggregate: identity, role, negotiated terms,
// this party's own key material, the counterparty's public material once
// received, and references to transactions broadcast so far. The current
// FSM state lives alongside it in the fsm package, not here, so that
// Trade remains a pure data record the journal can snapshot directly.
type Trade struct {
	ID        ID
	Role      Role
	Amounts   Amounts
	Timelocks Timelocks
	Own       *KeyMaterial
	Counter   *PublicMaterial // nil until the counterparty's message arrives

	SwaplockTxID      string
	RefundTriggerTxID string
	ClaimTxID         string
	SeizeTxID         string
}

// New creates a fresh Trade for the initiating party (Alice).
func New(role Role, amounts Amounts, timelocks Timelocks, own *KeyMaterial) (*Trade, error) {
	id, err := NewID()
	if err != nil {
		return nil, err
	}

	return &Trade{
		ID:        id,
		Role:      role,
		Amounts:   amounts,
		Timelocks: timelocks,
		Own:       own,
	}, nil
}
