// Package message implements the versioned wire envelope and the M1-M5
// handshake payloads exchanged between Alice and Bob, generalizing the
// teacher's net/message flat-byte-prefixed Message interface into a
// phase-tagged, semver-versioned JSON envelope.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
)

// EnvelopeVersion is the wire format version this build emits and the
// minimum version it accepts from a counterpart.
var EnvelopeVersion = semver.MustParse("1.0.0")

var validate = validator.New()

// Phase identifies which step of the handshake a message belongs to,
// replacing the teacher's flat Type byte enum with the swap protocol's
// own phase labels.
type Phase string

const (
	PhaseM1 Phase = "M1"
	PhaseM2 Phase = "M2"
	PhaseM3 Phase = "M3"
	PhaseM4 Phase = "M4"
	PhaseM5 Phase = "M5"
)

// Envelope wraps every message with a negotiated version, the trade it
// belongs to, and its phase, mirroring the teacher's Message interface
// (String/Encode/Type) but carrying richer metadata per message.
type Envelope struct {
	V       string          `json:"v" validate:"required,semver"`
	TradeID string          `json:"trade_id" validate:"required,len=32"`
	Phase   Phase           `json:"phase" validate:"required,oneof=M1 M2 M3 M4 M5"`
	Body    json.RawMessage `json:"body" validate:"required"`
}

func init() {
	_ = validate.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
		_, err := semver.NewVersion(fl.Field().String())
		return err == nil
	})
}

// Encode wraps body in a versioned envelope and marshals it to JSON.
func Encode(tradeID string, phase Phase, body interface{}) ([]byte, error) {
	if err := validate.Struct(body); err != nil {
		return nil, fmt.Errorf("invalid %s body: %w", phase, err)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s body: %w", phase, err)
	}

	env := Envelope{
		V:       EnvelopeVersion.String(),
		TradeID: tradeID,
		Phase:   phase,
		Body:    raw,
	}

	if err := validate.Struct(env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	return json.Marshal(env)
}

// Decode unwraps an envelope and checks its version is compatible
// (same major version, at least the negotiated minor/patch) before
// returning its phase and raw body for the caller to unmarshal further.
func Decode(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	if err := validate.Struct(env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	got, err := semver.NewVersion(env.V)
	if err != nil {
		return nil, fmt.Errorf("invalid envelope version %q: %w", env.V, err)
	}

	if got.Major() != EnvelopeVersion.Major() {
		return nil, fmt.Errorf("incompatible envelope major version %d, expected %d", got.Major(), EnvelopeVersion.Major())
	}
	if got.LessThan(EnvelopeVersion) {
		return nil, fmt.Errorf("envelope version %s is older than the minimum %s", got, EnvelopeVersion)
	}

	return &env, nil
}

// Unmarshal decodes env's body into v, the typed M1-M5 struct the caller
// expects for env.Phase.
func (env *Envelope) Unmarshal(v interface{}) error {
	if err := json.Unmarshal(env.Body, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s body: %w", env.Phase, err)
	}

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s body: %w", env.Phase, err)
	}

	return nil
}
