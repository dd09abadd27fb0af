package message

import "github.com/Cyrix126/bch-xmr-swap/chainamounts"

// Timelocks carries the T1/T2 relative-block counts Alice proposes in M1;
// Bob either accepts them as part of M2 or rejects the trade outright.
type Timelocks struct {
	T1Blocks int64 `json:"t1_blocks" validate:"required,gt=0"`
	T2Blocks int64 `json:"t2_blocks" validate:"required,gt=0"`
}

// Amounts carries the agreed trade size on both chains.
type Amounts struct {
	BchSatoshis chainamounts.Satoshis `json:"bch_satoshis" validate:"gt=0"`
	XmrPiconero chainamounts.Piconero `json:"xmr_piconero" validate:"gt=0"`
}

// M1 is Alice's opening message: her key material, DLEQ proof, proposed
// amounts, and timelocks.
type M1 struct {
	ASpendSecp []byte    `json:"a_spend_secp" validate:"required,len=33"`
	ASpendEd   []byte    `json:"a_spend_ed" validate:"required,len=32"`
	AViewEd    []byte    `json:"a_view_ed" validate:"required,len=32"`
	RefundPk   []byte    `json:"refund_pk" validate:"required,len=33"`
	ClaimPk    []byte    `json:"claim_pk" validate:"required,len=33"`
	DleqA      DleqProof `json:"dleq_a" validate:"required"`
	Amounts    Amounts   `json:"amounts" validate:"required"`
	Timelocks  Timelocks `json:"timelocks" validate:"required"`
}

// M2 is Bob's reply: his key material, DLEQ proof, and the signatures
// Alice needs before she is willing to fund Swaplock.
//
// VesRefundPresig is Alice's own VES pre-signature over the refund-trigger
// transaction (encrypted under her a_spend adaptor point) echoed back so
// Alice can check it reached Bob unchanged before the trade commits.
// VesSeizePresig carries Bob's own VES pre-signature for the BobSeize
// branch (fsm.BobMachine.SendM2). Alice's completed refund-trigger
// signature, which lets Bob broadcast that transaction if Alice disappears
// after t1 (scenario S4), is not part of M2: Bob receives it in the
// RefundBundle passed to fsm.BobMachine.HandleM1.
type M2 struct {
	BSpendSecp      []byte    `json:"b_spend_secp" validate:"required,len=33"`
	BSpendEd        []byte    `json:"b_spend_ed" validate:"required,len=32"`
	BViewEd         []byte    `json:"b_view_ed" validate:"required,len=32"`
	RefundPk        []byte    `json:"refund_pk" validate:"required,len=33"`
	ClaimPk         []byte    `json:"claim_pk" validate:"required,len=33"`
	DleqB           DleqProof `json:"dleq_b" validate:"required"`
	VesRefundPresig PreSig    `json:"ves_refund_presig" validate:"required"`
	VesSeizePresig  PreSig    `json:"ves_seize_presig" validate:"required"`
}

// M3 carries the claim-branch VES pre-signature and the Swaplock txid it
// is bound to, exchanged once Swaplock has confirmed.
type M3 struct {
	VesClaimPresig PreSig `json:"ves_claim_presig" validate:"required"`
	SwaplockTxID   string `json:"swaplock_txid" validate:"required,len=64"`
}

// M4 carries proof that the XMR lock transaction to the shared address
// has reached the required confirmation depth.
type M4 struct {
	XmrLockProof XmrLockProof `json:"xmr_lock_proof" validate:"required"`
}

// XmrLockProof is the embedded proof-of-lock payload within M4.
type XmrLockProof struct {
	TxID      string `json:"txid" validate:"required"`
	ConfsSeen uint32 `json:"confs_seen" validate:"gte=0"`
}

// M5 is Alice's optional courtesy notice that she has broadcast Claim,
// letting Bob skip polling the chain himself.
type M5 struct {
	ClaimTxID string `json:"claim_txid" validate:"required,len=64"`
}

// DleqProof is the wire encoding of a crypto/dleq.Proof, produced by
// dleq.Proof.Marshal and decoded with dleq.UnmarshalProof.
type DleqProof struct {
	Bytes []byte `json:"bytes" validate:"required"`
}

// PreSig is the wire encoding of a crypto/ves.PreSignature.
type PreSig struct {
	RPrime []byte `json:"r_prime" validate:"required,len=33"`
	SPrime []byte `json:"s_prime" validate:"required,len=32"`
}
