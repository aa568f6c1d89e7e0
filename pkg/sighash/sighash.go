// Package sighash computes the digest a transparent input signature commits
// to, and signs and verifies inputs over it.
//
// Two consensus eras are supported:
//
//   - Legacy (transaction version < 4): the transaction is copied with the
//     signature hash type overrides applied, serialized, followed by the
//     4-byte hash type, and hashed with double SHA-256.
//   - Sapling-era (version >= 4): the ZIP 243 preimage of personalized
//     BLAKE2b-256 sub-hashes over prevouts, sequences and outputs, plus the
//     header fields introduced by Overwinter and Sapling, hashed with a
//     BLAKE2b-256 personalized by the consensus branch id.
//
// In both cases the 32-byte hash is byte-reversed to form the returned
// Digest. Signing reads the digest as a little-endian scalar, so the curve
// primitive sees the hash in its original byte order.
//
// Shielded components are not supported: the JoinSplit and Sapling
// spend/output sub-hashes are always zero.
//
// References:
//   - ZIP 143: https://zips.z.cash/zip-0143
//   - ZIP 243: https://zips.z.cash/zip-0243
package sighash

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/suffix-labs/zcash-sighash/pkg/script"
	"github.com/suffix-labs/zcash-sighash/pkg/transaction"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	sigHashMask = 0x1f
)

// Base returns the output selector bits of the hash type.
func (t SigHashType) Base() SigHashType {
	return t & sigHashMask
}

// AnyOneCanPay reports whether the ANYONECANPAY modifier is set.
func (t SigHashType) AnyOneCanPay() bool {
	return t&SigHashAnyOneCanPay != 0
}

// String returns the conventional name, e.g. "SINGLE|ANYONECANPAY".
func (t SigHashType) String() string {
	var base string
	switch t.Base() {
	case SigHashAll:
		base = "ALL"
	case SigHashNone:
		base = "NONE"
	case SigHashSingle:
		base = "SINGLE"
	default:
		return fmt.Sprintf("0x%x", uint32(t))
	}
	if t&^(sigHashMask|SigHashAnyOneCanPay) != 0 {
		return fmt.Sprintf("0x%x", uint32(t))
	}
	if t.AnyOneCanPay() {
		return base + "|ANYONECANPAY"
	}
	return base
}

// ParseSigHashType parses names such as "ALL", "single|anyonecanpay" or
// "SIGHASH_NONE|SIGHASH_ANYONECANPAY".
func ParseSigHashType(s string) (SigHashType, error) {
	var base, modifier SigHashType
	for _, part := range strings.Split(s, "|") {
		name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(part)), "SIGHASH_")

		var sel SigHashType
		switch name {
		case "ALL":
			sel = SigHashAll
		case "NONE":
			sel = SigHashNone
		case "SINGLE":
			sel = SigHashSingle
		case "ANYONECANPAY":
			modifier = SigHashAnyOneCanPay
			continue
		default:
			return 0, fmt.Errorf("unknown signature hash type %q", part)
		}
		if base != 0 {
			return 0, fmt.Errorf("signature hash type %q selects more "+
				"than one output mode", s)
		}
		base = sel
	}
	if base == 0 {
		return 0, fmt.Errorf("signature hash type %q selects no output mode", s)
	}
	return base | modifier, nil
}

// Consensus branch ids of the network upgrades.
const (
	SproutBranchID     uint32 = 0x00000000
	OverwinterBranchID uint32 = 0x5ba81b19
	SaplingBranchID    uint32 = 0x76b809bb
	BlossomBranchID    uint32 = 0x2bb40e60
	HeartwoodBranchID  uint32 = 0xf5b9230b
	CanopyBranchID     uint32 = 0xe9ff75a6
	NU5BranchID        uint32 = 0xc2d6d0b4

	// DefaultBranchID is used by Sapling-era digests when neither the
	// transaction nor WithDefaultBranchID supplies one.
	DefaultBranchID = SaplingBranchID
)

// Digest is a 32-byte signature hash in the byte-reversed form consumed by
// Sign and Verify.
type Digest [32]byte

// String returns the hex encoding of the digest bytes.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// signingHash is the digest read as a little-endian scalar and written out in
// the big-endian form the curve primitive expects.
func (d Digest) signingHash() [32]byte {
	var h [32]byte
	for i := range d {
		h[i] = d[len(d)-1-i]
	}
	return h
}

// Signable is the read-only view of a transaction that signature hashes are
// computed over. *transaction.Transaction implements it. Implementations must
// return copies: the builders rely on values handed out being theirs.
type Signable interface {
	Header() transaction.Header
	NumTxIn() int
	TxIn(i int) transaction.TxIn
	NumTxOut() int
	TxOut(i int) transaction.TxOut
}

var _ Signable = (*transaction.Transaction)(nil)

// Algorithm is the digest scheme of a consensus era.
type Algorithm uint8

const (
	// Legacy is copy-and-serialize with double SHA-256.
	Legacy Algorithm = iota

	// SaplingEra is the ZIP 243 personalized BLAKE2b-256 scheme.
	SaplingEra
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case Legacy:
		return "legacy"
	case SaplingEra:
		return "sapling"
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// AlgorithmFor selects the digest scheme for a transaction version.
func AlgorithmFor(version int32) Algorithm {
	if version >= transaction.SaplingTxVersion {
		return SaplingEra
	}
	return Legacy
}

type options struct {
	defaultBranchID uint32
}

// Option configures a digest computation.
type Option func(*options)

// WithDefaultBranchID sets the consensus branch id used for Sapling-era
// digests of transactions that do not carry their own override.
func WithDefaultBranchID(id uint32) Option {
	return func(o *options) {
		o.defaultBranchID = id
	}
}

func newOptions(opts []Option) *options {
	o := &options{defaultBranchID: DefaultBranchID}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// isNil reports whether tx is nil, including a typed nil pointer.
func isNil(tx Signable) bool {
	if tx == nil {
		return true
	}
	t, ok := tx.(*transaction.Transaction)
	return ok && t == nil
}

// CalcSignatureHash computes the digest for input idx of tx under hashType,
// with subScript as the script code being signed.
//
// The transaction is never modified. For legacy transactions using
// SigHashSingle on an input without a matching output, the historical
// one-digest 0x00..01 is returned without hashing.
func CalcSignatureHash(
	tx Signable,
	hashType SigHashType,
	idx int,
	subScript script.Script,
	opts ...Option,
) (Digest, error) {
	if isNil(tx) {
		return Digest{}, precondition(ErrNilTransaction, "no transaction to hash")
	}
	if idx < 0 || idx >= tx.NumTxIn() {
		return Digest{}, precondition(ErrInputIndexOutOfRange,
			"input index %d out of range (have %d inputs)", idx, tx.NumTxIn())
	}

	hdr := tx.Header()
	algo := AlgorithmFor(hdr.Version)

	var (
		digest Digest
		err    error
	)
	switch algo {
	case Legacy:
		digest = calcLegacySignatureHash(tx, hashType, idx, subScript)
	case SaplingEra:
		digest, err = calcSaplingSignatureHash(tx, hashType, idx, subScript, newOptions(opts))
	}
	if err != nil {
		return Digest{}, err
	}

	log.Tracef("Input %d of v%d transaction, %s digest with %v: %v",
		idx, hdr.Version, algo, hashType, digest)
	return digest, nil
}
