// Package wire defines the canonical CBOR encoding of execution receipts
// exchanged between node components.
package wire

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/ledgervm/vm"
)

// cborEncMode uses canonical mode so the same receipt always encodes to the
// same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Receipt summarizes one finished execution: what ran, how it ended and
// what it left on the result stack.
type Receipt struct {
	EngineID     string   `cbor:"engine_id"`
	ScriptHash   [32]byte `cbor:"script_hash"`
	State        string   `cbor:"state"`
	FaultMessage string   `cbor:"fault_message,omitempty"`
	Instructions uint64   `cbor:"instructions"`
	Syscalls     uint64   `cbor:"syscalls"`
	Sweeps       uint64   `cbor:"sweeps"`
	// Results holds the result stack bottom-first, each item in the
	// engine's binary stack-item encoding.
	Results [][]byte `cbor:"results"`
}

// ScriptHash identifies a script by its SHA-256 digest.
func ScriptHash(code []byte) [32]byte {
	return sha256.Sum256(code)
}

// NewReceipt captures the outcome of a halted or faulted engine that ran
// the given entry script.
func NewReceipt(e *vm.Engine, script []byte) (*Receipt, error) {
	if !e.State().IsTerminal() {
		return nil, fmt.Errorf("wire: engine still in state %s", e.State())
	}
	r := &Receipt{
		EngineID:     e.ID().String(),
		ScriptHash:   ScriptHash(script),
		State:        e.State().String(),
		Instructions: e.Metrics().Instructions,
		Syscalls:     e.Metrics().Syscalls,
		Sweeps:       e.Metrics().Sweeps,
	}
	if err := e.FaultError(); err != nil {
		r.FaultMessage = err.Error()
	}
	stack := e.ResultStack()
	for i := stack.Len() - 1; i >= 0; i-- {
		item, err := stack.Peek(i)
		if err != nil {
			return nil, fmt.Errorf("wire: result stack: %w", err)
		}
		data, err := vm.SerializeItem(item, e.Limits())
		if err != nil {
			return nil, fmt.Errorf("wire: serialize result %d: %w", i, err)
		}
		r.Results = append(r.Results, data)
	}
	return r, nil
}

// ResultItems decodes the receipt's results into stack items registered with
// rc.
func (r *Receipt) ResultItems(rc *vm.ReferenceCounter, limits vm.Limits) ([]vm.StackItem, error) {
	items := make([]vm.StackItem, 0, len(r.Results))
	for i, data := range r.Results {
		item, err := vm.DeserializeItem(data, rc, limits)
		if err != nil {
			return nil, fmt.Errorf("wire: decode result %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// MarshalReceipt serializes a Receipt to CBOR bytes.
func MarshalReceipt(r *Receipt) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalReceipt deserializes a Receipt from CBOR bytes.
func UnmarshalReceipt(data []byte) (*Receipt, error) {
	var r Receipt
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("wire: unmarshal receipt: %w", err)
	}
	return &r, nil
}
