// Package fsm implements the per-role swap state machines spec.md §4.4
// describes: one machine type per side (AliceMachine, BobMachine), with
// package-level named guard functions gating the transitions, mirroring the teacher's
// protocol/bob.swapState / protocol/xmrtaker,xmrmaker package split and
// its checkContract/setTimeouts precondition-check idiom.
package fsm

import (
	"fmt"

	"github.com/Cyrix126/bch-xmr-swap/crypto/dleq"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ed25519ext"
	"github.com/Cyrix126/bch-xmr-swap/crypto/secp256k1"
	"github.com/Cyrix126/bch-xmr-swap/crypto/ves"
	"github.com/Cyrix126/bch-xmr-swap/message"
)

// secpPointFromWire decodes a compressed secp256k1 point from a message field.
func secpPointFromWire(b []byte) (*secp256k1.PublicKey, error) {
	p, err := secp256k1.PublicKeyFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("invalid secp256k1 point: %w", err)
	}
	return p, nil
}

// edPointFromWire decodes an ed25519 point from a message field.
func edPointFromWire(b []byte) (*ed25519ext.Point, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid ed25519 point length %d", len(b))
	}
	var arr [32]byte
	copy(arr[:], b)
	return ed25519ext.PointFromBytes(arr)
}

// dleqProofFromWire decodes a message.DleqProof into a crypto/dleq.Proof.
func dleqProofFromWire(p message.DleqProof) (*dleq.Proof, error) {
	proof, err := dleq.UnmarshalProof(p.Bytes)
	if err != nil {
		return nil, fmt.Errorf("invalid dleq proof: %w", err)
	}
	return proof, nil
}

// dleqProofToWire encodes a crypto/dleq.Proof into its wire form.
func dleqProofToWire(p *dleq.Proof) message.DleqProof {
	return message.DleqProof{Bytes: p.Marshal()}
}

// presigFromWire decodes a message.PreSig into a ves.PreSignature.
func presigFromWire(p message.PreSig) (*ves.PreSignature, error) {
	rPrime, err := secpPointFromWire(p.RPrime)
	if err != nil {
		return nil, fmt.Errorf("invalid pre-signature r-prime: %w", err)
	}
	var sBytes [secp256k1.ScalarSize]byte
	if len(p.SPrime) != secp256k1.ScalarSize {
		return nil, fmt.Errorf("invalid pre-signature s-prime length")
	}
	copy(sBytes[:], p.SPrime)
	sPrime, err := secp256k1.ScalarFromBytes(sBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid pre-signature s-prime: %w", err)
	}
	return &ves.PreSignature{RPrime: rPrime, SPrime: sPrime}, nil
}

// presigToWire encodes a ves.PreSignature into its wire form.
func presigToWire(p *ves.PreSignature) message.PreSig {
	s := p.SPrime.Bytes()
	return message.PreSig{RPrime: p.RPrime.Bytes(), SPrime: s[:]}
}

// sigFromWire decodes a message.PreSig carrying a fully-completed VES
// signature (reusing the pre-signature's (point, scalar) wire shape).
func sigFromWire(p message.PreSig) (*ves.Signature, error) {
	r, err := secpPointFromWire(p.RPrime)
	if err != nil {
		return nil, fmt.Errorf("invalid signature r: %w", err)
	}
	var sBytes [secp256k1.ScalarSize]byte
	if len(p.SPrime) != secp256k1.ScalarSize {
		return nil, fmt.Errorf("invalid signature s length")
	}
	copy(sBytes[:], p.SPrime)
	s, err := secp256k1.ScalarFromBytes(sBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid signature s: %w", err)
	}
	return &ves.Signature{R: r, S: s}, nil
}

// sigToWire encodes a completed VES signature into the PreSig wire shape.
func sigToWire(sig *ves.Signature) message.PreSig {
	s := sig.S.Bytes()
	return message.PreSig{RPrime: sig.R.Bytes(), SPrime: s[:]}
}
