package transaction

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/suffix-labs/zcash-sighash/pkg/script"
)

// Serialization format (all integers little-endian, counts and script
// lengths are compact sizes):
//
//	header (4)                          version | overwintered << 31
//	version_group_id (4)                if overwintered
//	tx_in_count || tx_in*               prevout hash (32) || index (4) || script || sequence (4)
//	tx_out_count || tx_out*             value (8) || script
//	lock_time (4)
//	expiry_height (4)                   if overwintered and version >= 3
//	value_balance (8)                   if overwintered and version >= 4
//	n_shielded_spend || n_shielded_out  if overwintered and version >= 4, always 0
//	n_joinsplit                         if version >= 2, always 0
const (
	// MaxScriptSize bounds a single script read from the wire.
	MaxScriptSize = 2_000_000

	// MaxTxItems bounds the number of inputs or outputs read from the wire.
	MaxTxItems = 100_000

	// wire protocol version passed to the btcd varint helpers; it does not
	// affect the encoding.
	pver = 0
)

func (h *Header) hasExpiry() bool {
	return h.Overwintered && h.Version >= OverwinterTxVersion
}

func (h *Header) hasSapling() bool {
	return h.Overwintered && h.Version >= SaplingTxVersion
}

func (h *Header) hasJoinSplits() bool {
	return h.Version >= 2
}

// rawHeader is the first four serialized bytes.
func (h *Header) rawHeader() uint32 {
	v := uint32(h.Version)
	if h.Overwintered {
		v |= overwinteredFlag
	}
	return v
}

// Serialize writes the canonical transaction encoding to w.
func (tx *Transaction) Serialize(w io.Writer) error {
	h := &tx.header

	if err := binary.Write(w, binary.LittleEndian, h.rawHeader()); err != nil {
		return err
	}
	if h.Overwintered {
		if err := binary.Write(w, binary.LittleEndian, h.VersionGroupID); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.inputs))); err != nil {
		return err
	}
	for i := range tx.inputs {
		if err := writeTxIn(w, &tx.inputs[i]); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(tx.outputs))); err != nil {
		return err
	}
	for i := range tx.outputs {
		if err := WriteTxOut(w, &tx.outputs[i]); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, h.LockTime); err != nil {
		return err
	}
	if h.hasExpiry() {
		if err := binary.Write(w, binary.LittleEndian, h.ExpiryHeight); err != nil {
			return err
		}
	}
	if h.hasSapling() {
		if err := binary.Write(w, binary.LittleEndian, uint64(h.ValueBalance)); err != nil {
			return err
		}
		// No shielded spends or outputs.
		if err := wire.WriteVarInt(w, pver, 0); err != nil {
			return err
		}
		if err := wire.WriteVarInt(w, pver, 0); err != nil {
			return err
		}
	}
	if h.hasJoinSplits() {
		if err := wire.WriteVarInt(w, pver, 0); err != nil {
			return err
		}
	}

	return nil
}

// Bytes returns the canonical encoding of the transaction.
func (tx *Transaction) Bytes() []byte {
	buf := new(bytes.Buffer)
	// Writes to a bytes.Buffer cannot fail.
	_ = tx.Serialize(buf)
	return buf.Bytes()
}

// TxHash returns the double SHA-256 of the serialized transaction. Its String
// form is the conventional txid.
func (tx *Transaction) TxHash() chainhash.Hash {
	return chainhash.DoubleHashH(tx.Bytes())
}

func writeTxIn(w io.Writer, in *TxIn) error {
	if _, err := w.Write(in.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, in.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, pver, in.SignatureScript); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, in.Sequence)
}

// WriteTxOut writes value || compact-size script, the output encoding shared
// by transactions and signature hash preimages.
func WriteTxOut(w io.Writer, out *TxOut) error {
	if err := binary.Write(w, binary.LittleEndian, out.Value); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, pver, out.PkScript)
}

// Parse decodes a complete raw transaction. Trailing bytes are an error.
func Parse(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)
	tx, err := Deserialize(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, &ParseError{Message: "unexpected data after transaction", Cause: ErrTrailingBytes}
	}
	return tx, nil
}

// ParseHex decodes a hex-encoded raw transaction.
func ParseHex(s string) (*Transaction, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, &ParseError{Message: "invalid hex", Cause: err}
	}
	return Parse(data)
}

// Deserialize reads one transaction from r.
func Deserialize(r io.Reader) (*Transaction, error) {
	var h Header

	var raw uint32
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return nil, &ParseError{Message: "failed to read header", Cause: err}
	}
	h.Overwintered = raw&overwinteredFlag != 0
	h.Version = int32(raw &^ overwinteredFlag)

	if h.Overwintered {
		if h.Version < OverwinterTxVersion {
			return nil, &ParseError{Message: "overwintered transaction below version 3", Cause: ErrUnsupportedVersion}
		}
		if err := binary.Read(r, binary.LittleEndian, &h.VersionGroupID); err != nil {
			return nil, &ParseError{Message: "failed to read version group id", Cause: err}
		}
	}

	nIn, err := readCount(r, "tx_in")
	if err != nil {
		return nil, err
	}
	inputs := make([]TxIn, nIn)
	for i := range inputs {
		if err := readTxIn(r, &inputs[i]); err != nil {
			return nil, err
		}
	}

	nOut, err := readCount(r, "tx_out")
	if err != nil {
		return nil, err
	}
	outputs := make([]TxOut, nOut)
	for i := range outputs {
		if err := readTxOut(r, &outputs[i]); err != nil {
			return nil, err
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &h.LockTime); err != nil {
		return nil, &ParseError{Message: "failed to read lock time", Cause: err}
	}
	if h.hasExpiry() {
		if err := binary.Read(r, binary.LittleEndian, &h.ExpiryHeight); err != nil {
			return nil, &ParseError{Message: "failed to read expiry height", Cause: err}
		}
	}
	if h.hasSapling() {
		if err := binary.Read(r, binary.LittleEndian, &h.ValueBalance); err != nil {
			return nil, &ParseError{Message: "failed to read value balance", Cause: err}
		}
		if err := expectNoShielded(r, "shielded spends"); err != nil {
			return nil, err
		}
		if err := expectNoShielded(r, "shielded outputs"); err != nil {
			return nil, err
		}
	}
	if h.hasJoinSplits() {
		if err := expectNoShielded(r, "joinsplits"); err != nil {
			return nil, err
		}
	}

	return &Transaction{header: h, inputs: inputs, outputs: outputs}, nil
}

func readCount(r io.Reader, field string) (uint64, error) {
	n, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return 0, &ParseError{Message: "failed to read " + field + " count", Cause: err}
	}
	if n > MaxTxItems {
		return 0, &ParseError{Message: field + " count too large", Cause: ErrTooManyItems}
	}
	return n, nil
}

func readTxIn(r io.Reader, in *TxIn) error {
	if _, err := io.ReadFull(r, in.PreviousOutPoint.Hash[:]); err != nil {
		return &ParseError{Message: "failed to read prevout hash", Cause: err}
	}
	if err := binary.Read(r, binary.LittleEndian, &in.PreviousOutPoint.Index); err != nil {
		return &ParseError{Message: "failed to read prevout index", Cause: err}
	}
	sigScript, err := wire.ReadVarBytes(r, pver, MaxScriptSize, "signature script")
	if err != nil {
		return &ParseError{Message: "failed to read signature script", Cause: err}
	}
	in.SignatureScript = script.Script(sigScript)
	if err := binary.Read(r, binary.LittleEndian, &in.Sequence); err != nil {
		return &ParseError{Message: "failed to read sequence", Cause: err}
	}
	return nil
}

func readTxOut(r io.Reader, out *TxOut) error {
	if err := binary.Read(r, binary.LittleEndian, &out.Value); err != nil {
		return &ParseError{Message: "failed to read output value", Cause: err}
	}
	pkScript, err := wire.ReadVarBytes(r, pver, MaxScriptSize, "public key script")
	if err != nil {
		return &ParseError{Message: "failed to read output script", Cause: err}
	}
	out.PkScript = script.Script(pkScript)
	return nil
}

func expectNoShielded(r io.Reader, field string) error {
	n, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return &ParseError{Message: "failed to read " + field + " count", Cause: err}
	}
	if n != 0 {
		return &ParseError{Message: field + " present", Cause: ErrUnsupportedShielded}
	}
	return nil
}
