// Package journal implements the append-only, fsync-durable per-trade log
// spec.md §4.5 requires: a hash-chained sequence of (seq, state, evidence)
// records that the FSM replays on restart to rederive its in-memory state.
// The teacher carries no direct analogue (its contract IS its durable
// state); this package's discipline is grounded on the file-locking
// conventions backend-engineer1-land applies to its wallet/channel.db
// files, generalized from "one process may hold this database" to "one
// process may drive this trade".
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Record is one accepted FSM transition. Evidence is a compact map of
// message ids / txids supporting the transition, never full wire bodies.
type Record struct {
	Seq       uint64            `json:"seq" validate:"gte=0"`
	PrevHash  string            `json:"prev_hash" validate:"len=64"`
	State     string            `json:"state" validate:"required"`
	Evidence  map[string]string `json:"evidence"`
	Hash      string            `json:"hash" validate:"len=64"`
}

// genesisHash is PrevHash for the first record in a trade's journal.
var genesisHash = hex.EncodeToString(make([]byte, 32))

// computeHash derives a record's self-hash from every field except Hash
// itself, chaining it to the previous record.
func computeHash(seq uint64, prevHash, state string, evidence map[string]string) (string, error) {
	body, err := json.Marshal(struct {
		Seq      uint64            `json:"seq"`
		PrevHash string            `json:"prev_hash"`
		State    string            `json:"state"`
		Evidence map[string]string `json:"evidence"`
	}{seq, prevHash, state, evidence})
	if err != nil {
		return "", fmt.Errorf("failed to marshal record body: %w", err)
	}

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
