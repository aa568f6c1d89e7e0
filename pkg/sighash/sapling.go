package sighash

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/wire"
	"github.com/suffix-labs/zcash-sighash/pkg/crypto"
	"github.com/suffix-labs/zcash-sighash/pkg/script"
	"github.com/suffix-labs/zcash-sighash/pkg/transaction"
)

// ZIP 243 constants - personalization strings for BLAKE2b hashing
const (
	// Signature hash personalization (12 bytes prefix + 4 bytes branch ID)
	SigHashPersonalizationPrefix = "ZcashSigHash"

	// Transparent sub-hashes (all 16 bytes)
	PrevoutsHashPersonalization = "ZcashPrevoutHash"
	SequenceHashPersonalization = "ZcashSequencHash"
	OutputsHashPersonalization  = "ZcashOutputsHash"

	// Shielded sub-hashes. Shielded components are unsupported, so these
	// sub-hashes are always zero and the personalizations never used; they
	// are listed to document the preimage.
	JoinSplitsHashPersonalization      = "ZcashJSplitsHash"
	ShieldedSpendsHashPersonalization  = "ZcashSSpendsHash"
	ShieldedOutputsHashPersonalization = "ZcashSOutputHash"
)

// saplingVersionFlag marks the header of the preimage as overwintered.
const saplingVersionFlag uint32 = 1 << 31

// blake2bSum hashes data with one of the fixed 16-byte personalizations
// above, which are always valid.
func blake2bSum(personalization string, data []byte) [32]byte {
	digest, _ := crypto.Blake2b256([]byte(personalization), data)
	return digest
}

// sigHashPersonalization returns "ZcashSigHash" || branch id (u32le).
func sigHashPersonalization(branchID uint32) []byte {
	p := make([]byte, crypto.PersonalizationSize)
	copy(p, SigHashPersonalizationPrefix)
	binary.LittleEndian.PutUint32(p[12:], branchID)
	return p
}

// calcSaplingSignatureHash computes the ZIP 243 signature hash:
//
//	BLAKE2b-256("ZcashSigHash" || branch_id, preimage), byte-reversed
func calcSaplingSignatureHash(
	tx Signable,
	hashType SigHashType,
	idx int,
	subScript script.Script,
	opts *options,
) (Digest, error) {
	preimage, err := saplingPreimage(tx, hashType, idx, subScript)
	if err != nil {
		return Digest{}, err
	}

	branchID := opts.defaultBranchID
	if hdr := tx.Header(); hdr.BranchID != nil {
		branchID = *hdr.BranchID
	}

	log.Tracef("Sapling preimage for input %d (branch 0x%08x): %x",
		idx, branchID, preimage)

	h, err := crypto.Blake2b256(sigHashPersonalization(branchID), preimage)
	if err != nil {
		return Digest{}, err
	}
	return Digest(crypto.Reverse(h)), nil
}

// saplingPreimage builds the ZIP 243 preimage for input idx:
//
//	header (4) || version_group_id (4) ||
//	hash_prevouts (32) || hash_sequence (32) || hash_outputs (32) ||
//	hash_joinsplits (32) || hash_shielded_spends (32) || hash_shielded_outputs (32) ||
//	lock_time (4) || expiry_height (4) || value_balance (8) || hash_type (4) ||
//	prevout hash (32) || prevout index (4) || script_code || amount (8) || sequence (4)
func saplingPreimage(
	tx Signable,
	hashType SigHashType,
	idx int,
	subScript script.Script,
) ([]byte, error) {
	in := tx.TxIn(idx)
	if in.PrevOut == nil {
		return nil, precondition(ErrMissingPrevOut,
			"input %d has no spent output to take the amount from", idx)
	}

	hdr := tx.Header()
	base := hashType.Base()
	anyoneCanPay := hashType.AnyOneCanPay()

	var hashPrevouts, hashSequence, hashOutputs [32]byte
	if !anyoneCanPay {
		hashPrevouts = computePrevoutsHash(tx)
	}
	if !anyoneCanPay && base != SigHashSingle && base != SigHashNone {
		hashSequence = computeSequenceHash(tx)
	}
	switch {
	case base != SigHashSingle && base != SigHashNone:
		hashOutputs = computeOutputsHash(tx, 0, tx.NumTxOut())
	case base == SigHashSingle && idx < tx.NumTxOut():
		hashOutputs = computeOutputsHash(tx, idx, idx+1)
	}

	// JoinSplits and Sapling spends/outputs are unsupported.
	var hashJoinSplits, hashShieldedSpends, hashShieldedOutputs [32]byte

	// Writes to a bytes.Buffer cannot fail.
	buf := bytes.NewBuffer(make([]byte, 0, 4+4+6*32+4+4+8+4+32+4+1+subScript.Len()+8+4))
	_ = binary.Write(buf, binary.LittleEndian, uint32(hdr.Version)|saplingVersionFlag)
	_ = binary.Write(buf, binary.LittleEndian, hdr.VersionGroupID)
	buf.Write(hashPrevouts[:])
	buf.Write(hashSequence[:])
	buf.Write(hashOutputs[:])
	buf.Write(hashJoinSplits[:])
	buf.Write(hashShieldedSpends[:])
	buf.Write(hashShieldedOutputs[:])
	_ = binary.Write(buf, binary.LittleEndian, hdr.LockTime)
	_ = binary.Write(buf, binary.LittleEndian, hdr.ExpiryHeight)
	_ = binary.Write(buf, binary.LittleEndian, uint64(hdr.ValueBalance))
	_ = binary.Write(buf, binary.LittleEndian, uint32(hashType))

	// The input being signed.
	buf.Write(in.PreviousOutPoint.Hash[:])
	_ = binary.Write(buf, binary.LittleEndian, in.PreviousOutPoint.Index)
	_ = wire.WriteVarBytes(buf, 0, subScript)
	_ = binary.Write(buf, binary.LittleEndian, in.PrevOut.Value)
	_ = binary.Write(buf, binary.LittleEndian, in.Sequence)

	return buf.Bytes(), nil
}

// computePrevoutsHash hashes every input's outpoint in order.
func computePrevoutsHash(tx Signable) [32]byte {
	var buf bytes.Buffer
	for i := 0; i < tx.NumTxIn(); i++ {
		op := tx.TxIn(i).PreviousOutPoint
		buf.Write(op.Hash[:])
		_ = binary.Write(&buf, binary.LittleEndian, op.Index)
	}
	return blake2bSum(PrevoutsHashPersonalization, buf.Bytes())
}

// computeSequenceHash hashes every input's sequence number in order.
func computeSequenceHash(tx Signable) [32]byte {
	var buf bytes.Buffer
	for i := 0; i < tx.NumTxIn(); i++ {
		_ = binary.Write(&buf, binary.LittleEndian, tx.TxIn(i).Sequence)
	}
	return blake2bSum(SequenceHashPersonalization, buf.Bytes())
}

// computeOutputsHash hashes outputs [from, to) in transaction encoding.
func computeOutputsHash(tx Signable, from, to int) [32]byte {
	var buf bytes.Buffer
	for i := from; i < to; i++ {
		out := tx.TxOut(i)
		_ = transaction.WriteTxOut(&buf, &out)
	}
	return blake2bSum(OutputsHashPersonalization, buf.Bytes())
}
