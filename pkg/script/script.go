// Package script implements the small part of transparent script handling
// that signature hashing needs.
//
// Scripts are opaque byte strings to this package except for the opcode
// boundaries: data pushes are skipped as a unit so that an 0xab byte inside
// pushed data is never mistaken for OP_CODESEPARATOR.
package script

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/txscript"
)

// Opcodes referenced by this package. Transparent Zcash scripts share
// Bitcoin's opcode table.
const (
	OP_DATA_20       = txscript.OP_DATA_20
	OP_DUP           = txscript.OP_DUP
	OP_EQUAL         = txscript.OP_EQUAL
	OP_EQUALVERIFY   = txscript.OP_EQUALVERIFY
	OP_HASH160       = txscript.OP_HASH160
	OP_CODESEPARATOR = txscript.OP_CODESEPARATOR
	OP_CHECKSIG      = txscript.OP_CHECKSIG
)

// Script is a raw transparent script.
type Script []byte

// Empty returns the empty script.
func Empty() Script {
	return Script{}
}

// FromHex decodes a hex-encoded script.
func FromHex(s string) (Script, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return Script(b), nil
}

// Bytes returns a copy of the raw script bytes.
func (s Script) Bytes() []byte {
	b := make([]byte, len(s))
	copy(b, s)
	return b
}

// Len returns the serialized length of the script.
func (s Script) Len() int {
	return len(s)
}

// String returns the hex encoding of the script.
func (s Script) String() string {
	return hex.EncodeToString(s)
}

// Clone returns an independent copy of the script. A nil script stays nil.
func (s Script) Clone() Script {
	if s == nil {
		return nil
	}
	return Script(s.Bytes())
}

// RemoveOpcode returns a new script with every instance of op removed. The
// receiver is left untouched.
func (s Script) RemoveOpcode(op byte) Script {
	out := make(Script, 0, len(s))

	var prev int32
	tok := txscript.MakeScriptTokenizer(0, s)
	for tok.Next() {
		if tok.Opcode() != op {
			out = append(out, s[prev:tok.ByteIndex()]...)
		}
		prev = tok.ByteIndex()
	}

	// A push running past the end of the script is not a valid opcode; keep
	// the remainder as-is.
	if tok.Err() != nil {
		out = append(out, s[tok.ByteIndex():]...)
	}
	return out
}

// RemoveCodeSeparators returns the script with all OP_CODESEPARATOR opcodes
// removed.
func (s Script) RemoveCodeSeparators() Script {
	return s.RemoveOpcode(OP_CODESEPARATOR)
}
