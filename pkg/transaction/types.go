// Package transaction implements the transparent view of a Zcash
// transaction: the fields a transparent signature commits to, the canonical
// byte serialization for versions 1 through 4, and parsing of raw
// transactions.
//
// Shielded components (JoinSplits, Sapling spends and outputs) are not
// modeled. Serialization always writes empty shielded sections and parsing
// rejects transactions that carry any.
//
// A Transaction is immutable once built with New: it owns copies of its
// inputs and outputs, and accessors return copies.
package transaction

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/suffix-labs/zcash-sighash/pkg/script"
)

// Transaction version constants.
const (
	OverwinterTxVersion      int32  = 3
	SaplingTxVersion         int32  = 4
	OverwinterVersionGroupID uint32 = 0x03C48270 // Version group ID for v3
	SaplingVersionGroupID    uint32 = 0x892F2085 // Version group ID for v4

	// overwinteredFlag is the high bit of the serialized header.
	overwinteredFlag uint32 = 1 << 31
)

// Header holds the transaction-wide fields.
type Header struct {
	Version        int32  // Transaction version, without the overwintered bit
	Overwintered   bool   // Header high bit; set for v3 and later
	VersionGroupID uint32 // Only serialized when Overwintered
	LockTime       uint32
	ExpiryHeight   uint32 // Serialized for overwintered v3+
	ValueBalance   int64  // Sapling value balance, serialized for overwintered v4+

	// BranchID optionally overrides the consensus branch id mixed into the
	// signature hash personalization. It is never serialized.
	BranchID *uint32
}

// OutPoint identifies a previous transaction output.
//
// Hash is held in wire (internal) byte order, the reverse of the natural
// display order produced by Hash.String().
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint builds an outpoint from a txid in display (hex) order.
func NewOutPoint(txid string, index uint32) (OutPoint, error) {
	h, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return OutPoint{}, err
	}
	return OutPoint{Hash: *h, Index: index}, nil
}

// TxIn is a transparent input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  script.Script
	Sequence         uint32

	// PrevOut is the output being spent. Its value is committed to by
	// Sapling-era signature hashes. It is not serialized.
	PrevOut *TxOut
}

// TxOut is a transparent output.
type TxOut struct {
	Value    uint64 // zatoshis
	PkScript script.Script
}

// MaxSequence is the sequence number of a final input.
const MaxSequence uint32 = 0xffffffff

// NewTxIn returns an input spending prevOut with a final sequence number and
// an empty signature script.
func NewTxIn(prevOutPoint OutPoint, prevOut *TxOut) TxIn {
	return TxIn{
		PreviousOutPoint: prevOutPoint,
		SignatureScript:  script.Empty(),
		Sequence:         MaxSequence,
		PrevOut:          prevOut,
	}
}

// NewTxOut returns an output paying value to pkScript.
func NewTxOut(value uint64, pkScript script.Script) TxOut {
	return TxOut{Value: value, PkScript: pkScript}
}

// Copy returns a deep copy of the input.
func (in TxIn) Copy() TxIn {
	in.SignatureScript = in.SignatureScript.Clone()
	if in.PrevOut != nil {
		prev := in.PrevOut.Copy()
		in.PrevOut = &prev
	}
	return in
}

// Copy returns a deep copy of the output.
func (out TxOut) Copy() TxOut {
	out.PkScript = out.PkScript.Clone()
	return out
}

// Copy returns a deep copy of the header.
func (h Header) Copy() Header {
	if h.BranchID != nil {
		id := *h.BranchID
		h.BranchID = &id
	}
	return h
}

// Transaction is an immutable transparent transaction.
type Transaction struct {
	header  Header
	inputs  []TxIn
	outputs []TxOut
}

// New builds a Transaction owning deep copies of the given header, inputs and
// outputs. Later changes to the arguments do not affect it.
func New(header Header, inputs []TxIn, outputs []TxOut) *Transaction {
	tx := &Transaction{
		header:  header.Copy(),
		inputs:  make([]TxIn, len(inputs)),
		outputs: make([]TxOut, len(outputs)),
	}
	for i := range inputs {
		tx.inputs[i] = inputs[i].Copy()
	}
	for i := range outputs {
		tx.outputs[i] = outputs[i].Copy()
	}
	return tx
}

// Header returns a copy of the transaction header.
func (tx *Transaction) Header() Header {
	return tx.header.Copy()
}

// Version returns the transaction version without the overwintered bit.
func (tx *Transaction) Version() int32 {
	return tx.header.Version
}

// NumTxIn returns the number of inputs.
func (tx *Transaction) NumTxIn() int {
	return len(tx.inputs)
}

// TxIn returns a copy of input i. It panics if i is out of range.
func (tx *Transaction) TxIn(i int) TxIn {
	return tx.inputs[i].Copy()
}

// NumTxOut returns the number of outputs.
func (tx *Transaction) NumTxOut() int {
	return len(tx.outputs)
}

// TxOut returns a copy of output i. It panics if i is out of range.
func (tx *Transaction) TxOut(i int) TxOut {
	return tx.outputs[i].Copy()
}

// TxIns returns copies of all inputs.
func (tx *Transaction) TxIns() []TxIn {
	ins := make([]TxIn, len(tx.inputs))
	for i := range tx.inputs {
		ins[i] = tx.inputs[i].Copy()
	}
	return ins
}

// TxOuts returns copies of all outputs.
func (tx *Transaction) TxOuts() []TxOut {
	outs := make([]TxOut, len(tx.outputs))
	for i := range tx.outputs {
		outs[i] = tx.outputs[i].Copy()
	}
	return outs
}

// WithPrevOuts returns a copy of tx whose inputs reference the given spent
// outputs, in input order. Raw transactions do not carry the outputs they
// spend, so callers attach them before computing Sapling-era digests. A nil
// entry, or an input past the end of prevOuts, keeps its current spent
// output.
func (tx *Transaction) WithPrevOuts(prevOuts []*TxOut) *Transaction {
	ins := tx.TxIns()
	for i := range ins {
		if i >= len(prevOuts) {
			break
		}
		if prevOuts[i] == nil {
			continue
		}
		prev := prevOuts[i].Copy()
		ins[i].PrevOut = &prev
	}
	return New(tx.header, ins, tx.outputs)
}
