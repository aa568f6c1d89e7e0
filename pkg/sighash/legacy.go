package sighash

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/suffix-labs/zcash-sighash/pkg/crypto"
	"github.com/suffix-labs/zcash-sighash/pkg/script"
	"github.com/suffix-labs/zcash-sighash/pkg/transaction"
)

// sigHashSingleBug is returned for SigHashSingle on an input with no output
// at the same index. Consensus requires this value, the uint256 one, instead
// of an error.
var sigHashSingleBug = Digest{31: 0x01}

// calcLegacySignatureHash computes the pre-Sapling signature hash.
//
// The signed transaction is a new value built from tx with these overrides,
// applied in order:
//
//  1. every input script is emptied except input idx, which gets subScript
//     with all OP_CODESEPARATORs removed
//  2. SigHashNone and SigHashSingle: every other input's sequence is 0
//  3. SigHashNone: no outputs
//  4. SigHashSingle: outputs are truncated to idx+1 and those before idx
//     are replaced by null outputs (value -1, empty script)
//  5. SigHashAnyOneCanPay: only input idx is kept
//
// The digest is the reversed double SHA-256 of its serialization followed by
// the little-endian 4-byte hash type.
func calcLegacySignatureHash(
	tx Signable,
	hashType SigHashType,
	idx int,
	subScript script.Script,
) Digest {
	signScript := subScript.RemoveCodeSeparators()
	base := hashType.Base()

	inputs := make([]transaction.TxIn, tx.NumTxIn())
	for i := range inputs {
		in := tx.TxIn(i)
		in.SignatureScript = script.Empty()
		if i == idx {
			in.SignatureScript = signScript
		} else if base == SigHashNone || base == SigHashSingle {
			in.Sequence = 0
		}
		inputs[i] = in
	}

	var outputs []transaction.TxOut
	switch base {
	case SigHashNone:
		// Commits to no outputs.

	case SigHashSingle:
		// Inputs past the last output have nothing to pair with; sign the
		// one-digest rather than fail.
		if idx >= tx.NumTxOut() {
			log.Debugf("SIGHASH_SINGLE for input %d with only %d outputs, "+
				"using one-digest", idx, tx.NumTxOut())
			return sigHashSingleBug
		}

		outputs = make([]transaction.TxOut, idx+1)
		for i := 0; i < idx; i++ {
			outputs[i] = transaction.TxOut{
				Value:    math.MaxUint64,
				PkScript: script.Empty(),
			}
		}
		outputs[idx] = tx.TxOut(idx)

	default:
		// SigHashAll and undefined selectors commit to every output.
		outputs = make([]transaction.TxOut, tx.NumTxOut())
		for i := range outputs {
			outputs[i] = tx.TxOut(i)
		}
	}

	if hashType.AnyOneCanPay() {
		inputs = inputs[idx : idx+1]
	}

	signed := transaction.New(tx.Header(), inputs, outputs)

	var buf bytes.Buffer
	_ = signed.Serialize(&buf)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(hashType))

	log.Tracef("Legacy preimage for input %d: %x", idx, buf.Bytes())

	return Digest(crypto.Reverse(crypto.DoubleSHA256(buf.Bytes())))
}
